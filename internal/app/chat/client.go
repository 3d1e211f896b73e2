package chat

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"eduplatform/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// viewers only receive; anything they send is read and discarded.
	maxInboundSize = 512
)

// Client is one websocket viewer attached to the Hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	sub  *Subscription

	logger zerolog.Logger
}

// NewClient subscribes conn to hub. It returns nil when the hub is shut down.
func NewClient(hub *Hub, conn *websocket.Conn, userID *int64) *Client {
	sub := hub.Subscribe()
	if sub == nil {
		return nil
	}

	ctx := logx.Logger().With().Str("subscriber_id", sub.ID)
	if userID != nil {
		ctx = ctx.Int64("user_id", *userID)
	}

	return &Client{
		hub:    hub,
		conn:   conn,
		sub:    sub,
		logger: ctx.Logger(),
	}
}

// ReadPump keeps the read side alive for pong handling and close detection.
// It unsubscribes and closes the connection when the peer goes away.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxInboundSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			return
		}
	}
}

func (c *Client) cleanupOnDisconnect() {
	c.hub.Unsubscribe(c.sub)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
	c.logger.Info().Msg("Subscriber disconnected")
}

// WritePump drains the subscription onto the connection and sends pings.
// When the hub closes the subscription it writes a close frame and exits.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.sub.C():
			if !c.writeFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeFrame returns false when the pump should stop.
func (c *Client) writeFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
