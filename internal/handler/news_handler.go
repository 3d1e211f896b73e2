package handler

import (
	"net/http"

	"eduplatform/internal/pkg/req"
	"eduplatform/internal/pkg/resp"
)

type CreateNewsInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func HandleListNews(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := deps.News.List(r.Context())
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, items)
	}
}

func HandleCreateNews(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CreateNewsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		item, err := deps.News.Create(r.Context(), input.Title, input.Content)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondCreated(w, r, item)
	}
}

func HandleDeleteNews(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, customErr := req.PathID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.News.Delete(r.Context(), id); err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, nil)
	}
}
