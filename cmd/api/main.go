package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/chronicle-engine/internal/config"
	"github.com/jwebster45206/chronicle-engine/internal/handlers"
	"github.com/jwebster45206/chronicle-engine/internal/logger"
	"github.com/jwebster45206/chronicle-engine/internal/middleware"
	"github.com/jwebster45206/chronicle-engine/internal/services"
	"github.com/jwebster45206/chronicle-engine/internal/services/events"
	"github.com/jwebster45206/chronicle-engine/internal/services/queue"
	"github.com/jwebster45206/chronicle-engine/internal/sessions"
	"github.com/jwebster45206/chronicle-engine/internal/storage"
	"github.com/jwebster45206/chronicle-engine/pkg/engine"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Chronicle Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	completion, err := services.NewFromConfig(cfg, log)
	if err != nil {
		log.Error("Failed to initialize LLM provider", "error", err)
		os.Exit(1)
	}

	worldPrompt, err := cfg.WorldPrompt()
	if err != nil {
		log.Error("Failed to load world prompt", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	opts := sessions.Options{
		Completion:   completion,
		Logger:       log,
		ModelName:    cfg.ModelName,
		WorldPrompt:  worldPrompt,
		HistoryLimit: cfg.HistoryLimit,
	}
	var turnQueue handlers.Enqueuer

	var store storage.Store
	if cfg.RedisURL != "" {
		redisStore, err := storage.NewRedisStore(cfg.RedisURL, cfg.SessionTTL, log)
		if err != nil {
			log.Error("Failed to create storage", "error", err)
			os.Exit(1)
		}
		storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer storageCancel()
		if err := redisStore.WaitForConnection(storageCtx, 10, 2*time.Second); err != nil {
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		store = redisStore

		broadcaster := events.NewBroadcaster(redisStore.Client(), log)
		opts.Observers = append(opts.Observers, func(id string) engine.Observer {
			return broadcaster.Observer(id)
		})
		turnQueue = queue.NewTurnQueue(queue.NewClientFrom(redisStore.Client(), log))
		mux.Handle("/v1/events/sessions/", handlers.NewEventsHandler(redisStore.Client(), log))
		log.Info("Using Redis storage with event streaming and async turns")
	} else {
		store = storage.NewMemoryStore()
		log.Warn("REDIS_URL not set; sessions are kept in memory and lost on restart")
	}
	opts.Store = store

	manager := sessions.NewManager(opts)

	mux.Handle("/health", handlers.NewHealthHandler(store, cfg.LLMProvider, cfg.ModelName, log))
	sessionsHandler := handlers.NewSessionsHandler(manager, turnQueue, cfg.LLMTimeout, log)
	mux.Handle("/v1/sessions", sessionsHandler)
	mux.Handle("/v1/sessions/", sessionsHandler)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.LoggerWith(log, mux),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: chat turns and event streams bound themselves.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	closeStore(store, log)

	log.Info("Server exited")
}

func closeStore(store storage.Store, log *slog.Logger) {
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}
}
