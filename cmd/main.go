/*
Package main is the entry point for the education platform API server.

It is responsible for loading configuration, initializing the global logging system,
opening the store (Postgres or in-memory), wiring the services and the chat hub,
setting up the HTTP server, and gracefully handling operating system interrupt
signals (SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"eduplatform/internal/app/auth"
	"eduplatform/internal/app/chat"
	"eduplatform/internal/app/course"
	"eduplatform/internal/app/db"
	"eduplatform/internal/app/db/memdb"
	"eduplatform/internal/app/db/pgstore"
	"eduplatform/internal/app/news"
	"eduplatform/internal/configs"
	"eduplatform/internal/handler"
	"eduplatform/internal/pkg/auth/jwt"
	"eduplatform/internal/pkg/limiter"
	"eduplatform/internal/pkg/logx"
)

// appStore is satisfied by both pgstore.Store and memdb.Store.
type appStore interface {
	auth.Store
	chat.Store
	course.Store
	news.Store
}

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(logx.Options{
		Development: cfg.IsDevelopment(),
		Level:       cfg.LogLevel,
	})
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("memory_store", cfg.UsesMemoryStore()).
		Bool("redis_relay", cfg.RedisURL != "").
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store appStore
	if cfg.UsesMemoryStore() {
		logx.Warn("Using the in-memory store; data is lost on restart")
		store = memdb.New()
	} else {
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logx.Fatal(err, "Failed to initialize database")
		}
		defer pool.Close()
		store = pgstore.New(pool)
	}

	var relay chat.Relay
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logx.Fatal(err, "Invalid REDIS_URL")
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logx.Fatal(err, "Failed to connect to Redis")
		}
		redisRelay := chat.NewRedisRelay(rdb)
		logx.Info("Redis relay enabled", "origin", redisRelay.Origin())
		relay = redisRelay
	}

	hub := chat.NewHub(relay)
	go hub.Run(ctx)

	authService := auth.NewService(store, jwt.NewIssuer(cfg.JWTSecret))
	if err := authService.BootstrapAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logx.Fatal(err, "Failed to bootstrap admin account")
	}

	deps := &handler.AppDeps{
		Config:      cfg,
		Auth:        authService,
		Chat:        chat.NewService(store, hub),
		Hub:         hub,
		Courses:     course.NewService(store),
		News:        news.NewService(store),
		ChatLimiter: limiter.NewIPRateLimiter(ctx, rate.Limit(cfg.ChatPostRate), cfg.ChatPostBurst),
		JoinLimiter: limiter.NewIPRateLimiter(ctx, rate.Limit(handler.JoinRate), handler.JoinBurst),
	}

	// Setup HTTP server and routes
	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Education platform API starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	// Close websocket subscribers first; Shutdown does not wait for hijacked connections.
	hub.Shutdown()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
