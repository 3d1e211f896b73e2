/*
Package handler provides the HTTP handlers and routing setup for the education platform API.

This file defines the main Router. Authentication and role checks are applied
declaratively per route group here; handlers never check roles themselves.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"eduplatform/internal/app/user"
	"eduplatform/internal/pkg/auth/jwt"
	"eduplatform/internal/pkg/logx"
	"eduplatform/internal/pkg/resp"
)

const (
	// JoinRate and JoinBurst bound websocket upgrades per client IP.
	JoinRate  = 0.2
	JoinBurst = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	// X-Forwarded-For and X-Real-IP are client controlled unless a proxy rewrites them.
	if deps.Config.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{
			"status":  "ok",
			"service": "eduplatform",
		})
	})

	validator := deps.Auth.Validator()
	authenticate := jwt.Authenticate(validator)
	identify := jwt.Identify(validator)
	adminOnly := jwt.RequireRole(string(user.RoleAdmin))

	r.Route("/api", func(api chi.Router) {
		// public
		api.Post("/register", HandleRegister(deps))
		api.Post("/login", HandleLogin(deps))
		api.Get("/courses", HandleListCourses(deps))
		api.Get("/courses/{id}", HandleGetCourse(deps))
		api.Get("/news", HandleListNews(deps))
		api.Get("/chat_messages", HandleListMessages(deps))

		// guests may post; a presented token must still be valid
		api.With(identify, deps.ChatLimiter.Middleware).Post("/chat_messages", HandlePostMessage(deps))

		api.Group(func(authed chi.Router) {
			authed.Use(authenticate)

			authed.Post("/token/refresh", HandleRefreshToken(deps))
			authed.Get("/me", HandleGetProfile(deps))
			authed.Put("/me/avatar", HandleUpdateAvatar(deps))
			authed.Get("/me/courses", HandleMyCourses(deps))

			authed.Post("/courses/{id}/save", HandleSaveCourse(deps))
			authed.Delete("/courses/{id}/save", HandleUnsaveCourse(deps))
			authed.Post("/courses/{id}/enroll", HandleEnrollCourse(deps))
			authed.Post("/courses/{id}/rating", HandleRateCourse(deps))

			authed.Group(func(admin chi.Router) {
				admin.Use(adminOnly)

				admin.Get("/users", HandleListUsers(deps))
				admin.Delete("/users/{id}", HandleDeleteUser(deps))

				admin.Post("/courses", HandleCreateCourse(deps))
				admin.Put("/courses/{id}", HandleUpdateCourse(deps))
				admin.Delete("/courses/{id}", HandleDeleteCourse(deps))

				admin.Post("/news", HandleCreateNews(deps))
				admin.Delete("/news/{id}", HandleDeleteNews(deps))
			})
		})
	})

	r.With(identify, deps.JoinLimiter.Middleware).Get("/ws", HandleWebSocket(deps.Hub, wsUpgrader))

	return r
}
