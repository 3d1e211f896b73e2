/*
Package chat contains the chat message model, the persistence-then-broadcast
service and the websocket hub that fans new messages out to live viewers.
*/
package chat

import (
	"encoding/json"
	"time"
)

const (
	// EventMessage is the only event type pushed over the broadcast channel.
	EventMessage = "message"

	// MaxContentBytes is the largest accepted message body after trimming.
	MaxContentBytes = 5000

	// DefaultHistoryLimit and MaxHistoryLimit bound ListMessages.
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// Message is a persisted chat message hydrated with its author's display fields.
// UserID, Username and Avatar are nil for guest messages.
type Message struct {
	ID        int64     `json:"id" db:"id"`
	UserID    *int64    `json:"user_id" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Username  *string   `json:"username" db:"username"`
	Avatar    *string   `json:"avatar" db:"avatar"`
}

// Event is the frame written to subscribers.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// InboundEvent is Event as seen by a decoder that dispatches on the type first.
type InboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
