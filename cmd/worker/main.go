package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/chronicle-engine/internal/config"
	"github.com/jwebster45206/chronicle-engine/internal/logger"
	"github.com/jwebster45206/chronicle-engine/internal/services"
	"github.com/jwebster45206/chronicle-engine/internal/services/events"
	"github.com/jwebster45206/chronicle-engine/internal/services/queue"
	"github.com/jwebster45206/chronicle-engine/internal/sessions"
	"github.com/jwebster45206/chronicle-engine/internal/storage"
	"github.com/jwebster45206/chronicle-engine/internal/worker"
	"github.com/jwebster45206/chronicle-engine/pkg/engine"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Chronicle Engine Worker",
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	if cfg.RedisURL == "" {
		log.Error("REDIS_URL is required for the worker")
		os.Exit(1)
	}

	store, err := storage.NewRedisStore(cfg.RedisURL, cfg.SessionTTL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage connection", "error", err)
		}
	}()

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx, 10, 2*time.Second); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage service initialized successfully")

	// The queue gets its own connection so BLPop does not starve the pool
	// used for session reads and writes.
	queueCtx, queueCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer queueCancel()
	queueClient, err := queue.NewClient(queueCtx, cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()
	turnQueue := queue.NewTurnQueue(queueClient)

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

	broadcaster := events.NewBroadcaster(store.Client(), log)
	manager := sessions.NewManager(sessions.Options{
		Store:      store,
		Completion: completion,
		Observers: []sessions.ObserverFunc{func(id string) engine.Observer {
			return broadcaster.Observer(id)
		}},
		Logger:       log,
		ModelName:    cfg.ModelName,
		WorldPrompt:  worldPrompt,
		HistoryLimit: cfg.HistoryLimit,
	})

	w := worker.New(turnQueue, manager, broadcaster, log, os.Getenv("WORKER_ID"))

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
		}
	}()

	log.Info("Worker started, waiting for requests...")

	<-quit
	log.Info("Worker shutdown signal received")
	w.Stop()

	// Stopping cancels the turn in flight; wait for it to be saved
	select {
	case <-done:
	case <-time.After(cfg.LLMTimeout):
		log.Warn("Worker did not stop before timeout")
	}

	log.Info("Worker exited")
}
