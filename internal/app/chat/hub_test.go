package chat

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelay struct {
	mu        sync.Mutex
	published [][]byte
	inbound   chan []byte
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{inbound: make(chan []byte)}
}

func (r *fakeRelay) Publish(_ context.Context, frame []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, frame)
	return nil
}

func (r *fakeRelay) Run(ctx context.Context, deliver func([]byte)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame := <-r.inbound:
			deliver(frame)
		}
	}
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	hub := NewHub(nil)
	slow := hub.Subscribe()
	fast := hub.Subscribe()

	for i := 0; i <= sendQueueSize; i++ {
		require.NoError(t, hub.Publish(context.Background(), Message{ID: int64(i + 1), Message: "x"}))
		<-fast.C()
	}

	assert.Equal(t, 1, hub.Len())

	drained := 0
	for range slow.C() {
		drained++
	}
	assert.Equal(t, sendQueueSize, drained)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe()

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)

	_, ok := <-sub.C()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Len())
	require.NoError(t, hub.Publish(context.Background(), Message{ID: 1, Message: "after"}))
}

func TestShutdownClosesSubscribers(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe()

	hub.Shutdown()

	_, ok := <-sub.C()
	assert.False(t, ok)
	assert.Nil(t, hub.Subscribe())
}

func TestRelayForwardsBothWays(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relay := newFakeRelay()
	hub := NewHub(relay)
	go hub.Run(ctx)

	sub := hub.Subscribe()

	require.NoError(t, hub.Publish(ctx, Message{ID: 1, Message: "local"}))
	<-sub.C()

	relay.mu.Lock()
	require.Len(t, relay.published, 1)
	var ev struct {
		Event string  `json:"event"`
		Data  Message `json:"data"`
	}
	require.NoError(t, json.Unmarshal(relay.published[0], &ev))
	relay.mu.Unlock()
	assert.Equal(t, EventMessage, ev.Event)
	assert.Equal(t, "local", ev.Data.Message)

	remote := []byte(`{"event":"message","data":{"id":2,"message":"remote"}}`)
	relay.inbound <- remote

	select {
	case frame := <-sub.C():
		assert.JSONEq(t, string(remote), string(frame))
	case <-time.After(time.Second):
		t.Fatal("relayed frame not delivered")
	}
}

func TestEnvelopeSkipsOwnOrigin(t *testing.T) {
	frame := []byte(`{"event":"message","data":{"id":1}}`)

	raw, err := encodeEnvelope("self", frame)
	require.NoError(t, err)

	_, foreign, err := decodeEnvelope("self", raw)
	require.NoError(t, err)
	assert.False(t, foreign)

	got, foreign, err := decodeEnvelope("other", raw)
	require.NoError(t, err)
	assert.True(t, foreign)
	assert.JSONEq(t, string(frame), string(got))

	_, _, err = decodeEnvelope("self", []byte("not json"))
	assert.Error(t, err)
}
