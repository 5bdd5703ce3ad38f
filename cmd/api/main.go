package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/arena-engine/internal/bridge"
	"github.com/jwebster45206/arena-engine/internal/config"
	"github.com/jwebster45206/arena-engine/internal/handlers"
	"github.com/jwebster45206/arena-engine/internal/logger"
	"github.com/jwebster45206/arena-engine/internal/middleware"
	"github.com/jwebster45206/arena-engine/internal/services/events"
	"github.com/jwebster45206/arena-engine/internal/services/queue"
	"github.com/jwebster45206/arena-engine/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Arena Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"comp", cfg.Comp,
		"data_dir", cfg.DataDir)

	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, cfg.SessionTTL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	// Static data is optional for the API; it only sharpens the bridge's item parsing
	var items bridge.ItemParser
	if a, err := store.GetAssets(storageCtx); err != nil {
		log.Warn("Assets not loaded", "error", err)
	} else {
		items = a
	}
	agent := bridge.NewClient(cfg.BridgeURL, items, log)

	queueClient, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	phaseQueue := queue.NewPhaseQueue(queueClient)
	sessionLog := queue.NewSessionLog(queueClient, cfg.SessionTTL)
	broadcaster := events.NewBroadcaster(queueClient.GetRedisClient(), log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"storage": store,
		"bridge":  agent,
	}, log)
	mux.Handle("/health", healthHandler)

	compHandler := handlers.NewCompHandler(log, store)
	mux.Handle("/v1/comps", compHandler)
	mux.Handle("/v1/comps/", compHandler)

	sessionHandler := handlers.NewSessionHandler(log, store, phaseQueue, cfg.Comp).
		WithNotifier(broadcaster).
		WithSessionLog(sessionLog)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	eventsHandler := handlers.NewEventsHandler(queueClient.GetRedisClient(), log)
	mux.Handle("/v1/events/sessions/", eventsHandler)

	handler := middleware.LoggerWith(log, mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the events stream stays open
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

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := queueClient.Close(); err != nil {
		log.Error("Error closing queue client", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
