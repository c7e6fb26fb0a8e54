package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/mail-screen/internal/core"
	"github.com/mikey/mail-screen/internal/di"
	"github.com/mikey/mail-screen/internal/ports"
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
	logger *zap.Logger,
	frontend ports.Frontend,
	service *core.SubmissionService,
) error {
	defer logger.Sync()

	// Start the front end
	if err := frontend.Start(); err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop accepting submissions
	if err := frontend.Stop(); err != nil {
		logger.Error("Failed to stop server", zap.Error(err))
	}

	// Let background deliveries finish
	service.Close()

	logger.Info("Shutdown complete")
	return nil
}
