package chat

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"eduplatform/internal/pkg/logx"
)

// RelayChannel is the Redis pub/sub channel shared by all instances.
const RelayChannel = "chat_events"

type envelope struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

// RedisRelay fans frames across instances over Redis pub/sub. Frames carry the
// publishing instance's origin id so an instance skips its own echoes.
type RedisRelay struct {
	rdb    *redis.Client
	origin string
	logger zerolog.Logger
}

// NewRedisRelay returns a relay with a fresh origin id.
func NewRedisRelay(rdb *redis.Client) *RedisRelay {
	return &RedisRelay{
		rdb:    rdb,
		origin: uuid.NewString(),
		logger: logx.Component("chat_relay"),
	}
}

// Origin is this instance's id on the relay channel.
func (r *RedisRelay) Origin() string {
	return r.origin
}

func (r *RedisRelay) Publish(ctx context.Context, frame []byte) error {
	data, err := encodeEnvelope(r.origin, frame)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, RelayChannel, data).Err()
}

func (r *RedisRelay) Run(ctx context.Context, deliver func(frame []byte)) error {
	pubsub := r.rdb.Subscribe(ctx, RelayChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			frame, foreign, err := decodeEnvelope(r.origin, []byte(msg.Payload))
			if err != nil {
				r.logger.Warn().Err(err).Msg("Dropping malformed relay payload")
				continue
			}
			if foreign {
				deliver(frame)
			}
		}
	}
}

func encodeEnvelope(origin string, frame []byte) ([]byte, error) {
	return json.Marshal(envelope{Origin: origin, Payload: frame})
}

// decodeEnvelope unwraps raw and reports whether it came from another origin.
func decodeEnvelope(self string, raw []byte) ([]byte, bool, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, err
	}
	return env.Payload, env.Origin != self, nil
}
