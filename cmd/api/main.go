// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lucascapelli/O-Especialista.Carros/internal/config"
	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/database/redis"
	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/platform"
	"github.com/lucascapelli/O-Especialista.Carros/internal/interfaces/http"
	"github.com/lucascapelli/O-Especialista.Carros/internal/pkg/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg)
	logger.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting storefront gateway")

	redisClient, err := redis.NewConnection(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	platformClient := platform.NewClient(cfg, logger)

	server, err := http.NewServer(cfg, redisClient, platformClient, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build HTTP server")
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	logger.Info("Server shutdown completed")
}
