package chat

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"eduplatform/internal/pkg/logx"
)

// sendQueueSize is the per-subscriber buffer. A subscriber that falls this far
// behind is dropped.
const sendQueueSize = 256

// Subscription is one live viewer registered with the Hub. Frames arrive on
// C until the subscription is dropped, at which point C is closed.
type Subscription struct {
	ID string

	send chan []byte
}

// C returns the frame channel. It is closed when the hub lets go of the
// subscription (Unsubscribe, a full queue or Shutdown).
func (s *Subscription) C() <-chan []byte {
	return s.send
}

// Relay carries published frames to other server instances.
type Relay interface {
	// Publish forwards a locally published frame.
	Publish(ctx context.Context, frame []byte) error

	// Run blocks, handing frames published by other instances to deliver,
	// until ctx is cancelled.
	Run(ctx context.Context, deliver func(frame []byte)) error
}

// Hub is the realtime broadcast channel. Delivery is at-most-once to the
// subscribers registered at the moment of Publish; there is no replay.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscription]struct{}
	closed      bool

	relay  Relay
	logger zerolog.Logger
}

// NewHub returns an empty hub. relay may be nil for a single instance.
func NewHub(relay Relay) *Hub {
	return &Hub{
		subscribers: make(map[*Subscription]struct{}),
		relay:       relay,
		logger:      logx.Component("chat_hub"),
	}
}

// Run starts the relay listener, if any, and blocks until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.relay == nil {
		<-ctx.Done()
		return
	}

	h.logger.Info().Msg("Cross-instance relay started")
	if err := h.relay.Run(ctx, h.deliver); err != nil && ctx.Err() == nil {
		h.logger.Error().Err(err).Msg("Relay stopped unexpectedly")
	}
}

// Subscribe registers a new subscriber. It returns nil after Shutdown.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		ID:   uuid.NewString(),
		send: make(chan []byte, sendQueueSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.subscribers[sub] = struct{}{}

	h.logger.Debug().Str("subscriber_id", sub.ID).Int("subscribers", len(h.subscribers)).Msg("Subscriber registered")
	return sub
}

// Unsubscribe removes sub and closes its channel. Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(sub)
}

func (h *Hub) removeLocked(sub *Subscription) {
	if _, ok := h.subscribers[sub]; !ok {
		return
	}
	delete(h.subscribers, sub)
	close(sub.send)
}

// Len reports the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish sends msg as a "message" event to every current subscriber and then
// to the relay. Slow subscribers are dropped, never waited on.
func (h *Hub) Publish(ctx context.Context, msg Message) error {
	frame, err := json.Marshal(Event{Event: EventMessage, Data: msg})
	if err != nil {
		return err
	}

	h.deliver(frame)

	if h.relay != nil {
		if err := h.relay.Publish(ctx, frame); err != nil {
			return err
		}
	}
	return nil
}

// deliver fans frame out to local subscribers. Channel sends happen under the
// read lock and closes under the write lock, so a send never hits a closed
// channel.
func (h *Hub) deliver(frame []byte) {
	var slow []*Subscription

	h.mu.RLock()
	for sub := range h.subscribers {
		select {
		case sub.send <- frame:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}

	h.mu.Lock()
	for _, sub := range slow {
		h.logger.Warn().Str("subscriber_id", sub.ID).Msg("Send queue full, dropping subscriber")
		h.removeLocked(sub)
	}
	h.mu.Unlock()
}

// Shutdown drops every subscriber and refuses new ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for sub := range h.subscribers {
		h.removeLocked(sub)
	}
	h.logger.Info().Msg("Hub shut down")
}
