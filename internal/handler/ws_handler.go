/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which upgrades the HTTP connection,
registers the viewer with the chat hub and runs the client's read and write pumps.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"eduplatform/internal/app/chat"
	"eduplatform/internal/pkg/auth/jwt"
	"eduplatform/internal/pkg/logx"
)

// HandleWebSocket subscribes the connection to every message published from
// now on. History is fetched separately through the list endpoint.
func HandleWebSocket(hub *chat.Hub, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userID *int64
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			id := payload.UserID
			userID = &id
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Ctx(r.Context()).Warn().Err(err).Msg("Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(hub, conn, userID)
		if client == nil {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = conn.Close()
			return
		}

		go client.WritePump()

		logx.Ctx(r.Context()).Info().Int("subscribers", hub.Len()).Msg("WebSocket subscriber registered")

		client.ReadPump()
	}
}
