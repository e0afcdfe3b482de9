package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/llm-mail-composer/internal/config"
	"github.com/mikey/llm-mail-composer/internal/core"
	"github.com/mikey/llm-mail-composer/internal/di"
	"github.com/mikey/llm-mail-composer/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	server ports.Server,
	generation *core.GenerationService,
	delivery *core.DeliveryService,
) error {
	defer logger.Sync()

	serverConfig, err := cfg.GetServer()
	if err != nil {
		return err
	}

	logger.Info("Collaborator status",
		zap.Bool("llm_available", generation.Available()),
		zap.Bool("mail_available", delivery.Available()),
		zap.String("mail_transport", delivery.TransportName()))

	// Start the server
	if err := server.Start(); err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Error("Failed to stop server", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}
