package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/arena-engine/internal/bridge"
	"github.com/jwebster45206/arena-engine/internal/config"
	"github.com/jwebster45206/arena-engine/internal/logger"
	"github.com/jwebster45206/arena-engine/internal/services/events"
	"github.com/jwebster45206/arena-engine/internal/services/queue"
	"github.com/jwebster45206/arena-engine/internal/storage"
	"github.com/jwebster45206/arena-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Arena Engine Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"bridge_url", cfg.BridgeURL,
		"headliner_reset", cfg.HeadlinerReset)

	// Initialize queue service
	queueClient, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()

	phaseQueue := queue.NewPhaseQueue(queueClient)
	log.Info("Queue service initialized successfully")

	// Initialize storage service
	storageService, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, cfg.SessionTTL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := storageService.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage service initialized successfully")

	gameData, err := storageService.GetAssets(storageCtx)
	if err != nil {
		log.Error("Failed to load assets", "error", err, "data_dir", cfg.DataDir)
		os.Exit(1)
	}

	agent := bridge.NewClient(cfg.BridgeURL, gameData, log)
	if err := agent.Ping(storageCtx); err != nil {
		// The agent may come up after the worker; phases fail until it does
		log.Warn("Bridge agent not reachable", "error", err)
	}
	agents := func(ctx context.Context) worker.Agent {
		return agent.WithContext(ctx)
	}

	// The lock client is separate from the queue client so BLPOP never holds it up
	lockClient, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := lockClient.Close(); err != nil {
			log.Error("Failed to close Redis client", "error", err)
		}
	}()

	processor := worker.NewPhaseProcessor(storageService, agents, log).
		WithBroadcaster(events.NewBroadcaster(lockClient.GetRedisClient(), log)).
		WithSessionLog(queue.NewSessionLog(lockClient, cfg.SessionTTL)).
		WithHeadlinerReset(cfg.HeadlinerReset)
	log.Info("Phase processor initialized successfully")

	w := worker.New(phaseQueue, processor, lockClient.GetRedisClient(), log, cfg.WorkerID)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("Worker started, waiting for requests...", "worker_id", w.ID())

	<-quit
	log.Info("Worker shutdown signal received")

	w.Stop()

	// Give worker time to finish current request
	time.Sleep(2 * time.Second)

	if err := storageService.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Worker exited")
}
