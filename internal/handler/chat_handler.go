package handler

import (
	"net/http"

	"eduplatform/internal/app/chat"
	"eduplatform/internal/pkg/auth/jwt"
	"eduplatform/internal/pkg/req"
	"eduplatform/internal/pkg/resp"
)

type PostMessageInput struct {
	Message string `json:"message"`
}

// HandleListMessages returns history newest first. Query: limit, before (message id).
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, customErr := req.QueryInt(r, "limit", 0)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		before, customErr := req.QueryInt(r, "before", 0)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		msgs, err := deps.Chat.ListMessages(r.Context(), int(min(limit, chat.MaxHistoryLimit)), before)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, msgs)
	}
}

// HandlePostMessage stores and broadcasts a message. Guests post with a nil author.
func HandlePostMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input PostMessageInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var authorID *int64
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			id := payload.UserID
			authorID = &id
		}

		msg, err := deps.Chat.PostMessage(r.Context(), authorID, input.Message)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		resp.RespondCreated(w, r, msg)
	}
}
