package router

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/paperbird/backend/internal/handlers"
	"github.com/paperbird/backend/internal/middleware"
	"github.com/paperbird/backend/internal/models"
	"github.com/paperbird/backend/internal/repositories"
	"github.com/paperbird/backend/internal/services"
	"github.com/paperbird/backend/pkg/config"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Info().Msg("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// firebaseAuthClient may be nil, in which case the JWT gate is used.
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client) {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(
		&models.User{},
		&models.Comment{},
	); err != nil {
		log.Fatal().Err(err).Msg("Failed to auto migrate models")
	}
	log.Info().Msg("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	mongoDB := mgClient.Database(cfg.MongoDatabase)
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	tagRepo := repositories.NewMongoTagRepository(mongoDB)
	if err := tagRepo.EnsureIndexes(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to create tag indexes")
	}
	log.Info().Msg("MongoDB tag indexes ensured.")
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)

	// --- Services ---
	var txRunner repositories.TxRunner
	if cfg.MongoTransactions {
		txRunner = repositories.NewMongoTxRunner(mgClient)
	} else {
		txRunner = repositories.NewPlainTxRunner()
	}
	tagLedger := services.NewTagLedger(tagRepo)
	postService := services.NewPostService(postRepo, commentRepo, tagLedger, txRunner)

	// --- Authorization gate ---
	var authMiddleware echo.MiddlewareFunc
	if firebaseAuthClient != nil {
		authMiddleware = middleware.FirebaseAuthMiddleware(firebaseAuthClient, userRepo)
		log.Info().Msg("Firebase authentication gate applied.")
	} else {
		authMiddleware = middleware.JWTAuthMiddleware(userRepo, cfg.JWTSecret)
		log.Info().Msg("JWT authentication gate applied.")
	}

	public := e.Group("")
	authed := e.Group("", authMiddleware)

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(public)

	// Post routes
	postHandler := handlers.NewPostHandler(postService, postRepo, userRepo)
	postHandler.RegisterPostRoutes(authed)
	postHandler.RegisterPublicPostRoutes(public)

	// Saved post routes
	savedPostHandler := handlers.NewSavedPostHandler(postService, postRepo)
	savedPostHandler.RegisterSavedPostRoutes(authed)

	// Comment routes
	commentHandler := handlers.NewCommentHandler(postService, commentRepo, postRepo)
	commentHandler.RegisterCommentRoutes(authed)
	commentHandler.RegisterPublicCommentRoutes(public)

	// Tag routes
	tagHandler := handlers.NewTagHandler(tagRepo, postRepo)
	tagHandler.RegisterTagRoutes(public)

	log.Info().Msg("All routes configured.")
}
