package router

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hdngo/ideahive/backend/internal/engagement"
	"github.com/hdngo/ideahive/backend/internal/feed"
	"github.com/hdngo/ideahive/backend/internal/handlers"
	"github.com/hdngo/ideahive/backend/internal/realtime"
	"github.com/hdngo/ideahive/backend/internal/repositories"
	"github.com/hdngo/ideahive/backend/pkg/config"
	"github.com/hdngo/ideahive/backend/pkg/mailer"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins: []string{cfg.AllowOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, mgClient *mongo.Client, hub *realtime.Hub, cfg *config.Config, logger zerolog.Logger) {
	db := mgClient.Database(cfg.DatabaseName)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	reactionRepo := repositories.NewMongoReactionRepository(db)
	if err := reactionRepo.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("Failed to create reaction indexes: %v", err)
	}
	commentRepo := repositories.NewMongoCommentRepository(db)
	ideaRepo := repositories.NewMongoIdeaRepository(db)
	userRepo := repositories.NewMongoUserRepository(db)
	categoryRepo := repositories.NewMongoCategoryRepository(db)

	// --- Realtime core ---
	engine := engagement.NewEngine(reactionRepo, logger)
	aggregator := engagement.NewAggregator(reactionRepo)
	resolver := feed.NewResolver(ideaRepo)
	notifier := mailer.NewService(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	})
	gateway := realtime.NewGateway(hub, engine, aggregator, resolver, commentRepo, ideaRepo, userRepo, notifier, logger)

	e.GET("/realtime", realtime.WSHandler(hub, gateway, cfg.AllowOrigin, logger))
	log.Println("Realtime gateway configured.")

	// --- REST routes ---
	api := e.Group("/api/v1")

	ideaHandler := handlers.NewIdeaHandler(ideaRepo, reactionRepo, commentRepo, cfg.BaseURL)
	ideaHandler.RegisterIdeaRoutes(api)
	log.Println("Idea routes configured.")

	commentHandler := handlers.NewCommentHandler(commentRepo, ideaRepo)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	categoryHandler := handlers.NewCategoryHandler(categoryRepo)
	categoryHandler.RegisterCategoryRoutes(api)
	log.Println("Category routes configured.")

	log.Println("All routes configured.")
}
