package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hdngo/ideahive/backend/internal/realtime"
	"github.com/hdngo/ideahive/backend/internal/router"
	"github.com/hdngo/ideahive/backend/pkg/config"
	"github.com/hdngo/ideahive/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB() // Ensure the connection is closed when main exits

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if cfg.Env == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// The hub runs until the process receives a shutdown signal; canceling
	// the context closes every open realtime connection.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(logger)
	go func() {
		if err := hub.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("realtime hub stopped")
		}
	}()

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e, cfg)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Mongo, hub, cfg, logger)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
