package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"notegraph/infrastructure/config"
	"notegraph/infrastructure/di"
	redismsg "notegraph/infrastructure/messaging/redis"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	logger := container.Logger

	// Rebuild the link graph from stored documents before serving any
	// traffic, so backlinks and graph queries are complete from the start.
	if err := container.LinkService.Rebuild(ctx, container.DocumentRepo); err != nil {
		logger.Fatal("Failed to rebuild link graph", zap.Error(err))
	}

	// Reap idle editing sessions in the background. Run also flushes
	// pending settles on shutdown.
	reaperDone := make(chan struct{})
	go func() {
		defer close(reaperDone)
		container.CollabRegistry.Run(ctx, cfg.Collab.ReapInterval)
	}()

	// Forward changes relayed from other instances into the local bus.
	if container.Notifier != nil {
		go container.Notifier.Run(ctx, func(note redismsg.Notification) {
			container.EventBus.Publish(ctx, note.Event())
		})
	}

	// No WriteTimeout: websocket connections outlive any sane value.
	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           container.HTTPHandler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	// Stop the reaper and wait for its shutdown flush so no settled
	// content is lost.
	cancel()
	select {
	case <-reaperDone:
	case <-shutdownCtx.Done():
		logger.Warn("Timed out waiting for session flush")
	}

	if err := container.Shutdown(shutdownCtx); err != nil {
		logger.Error("Container shutdown error", zap.Error(err))
	}
	_ = logger.Sync()

	log.Println("Server stopped")
}
