package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"astroinsight/infrastructure/config"
	"astroinsight/infrastructure/di"

	"go.uber.org/zap"
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

	container.Logger.Info("Starting outbox worker",
		zap.String("environment", cfg.Environment),
		zap.String("event_bus", cfg.EventBusName),
	)

	container.OutboxProcessor.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("Shutting down outbox worker...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		container.OutboxProcessor.Stop()
		close(done)
	}()

	select {
	case <-done:
		container.Logger.Info("Outbox worker stopped gracefully")
	case <-shutdownCtx.Done():
		container.Logger.Warn("Worker shutdown timeout exceeded")
	}

	if err := container.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}
}
