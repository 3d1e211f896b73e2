package handler

import (
	"eduplatform/internal/app/auth"
	"eduplatform/internal/app/chat"
	"eduplatform/internal/app/course"
	"eduplatform/internal/app/news"
	"eduplatform/internal/configs"
	"eduplatform/internal/pkg/limiter"
)

// AppDeps bundles everything the handlers reach for.
type AppDeps struct {
	Config *configs.AppConfig

	Auth    *auth.Service
	Chat    *chat.Service
	Hub     *chat.Hub
	Courses *course.Service
	News    *news.Service

	// ChatLimiter throttles chat posting; JoinLimiter throttles websocket upgrades.
	ChatLimiter *limiter.IPRateLimiter
	JoinLimiter *limiter.IPRateLimiter
}
