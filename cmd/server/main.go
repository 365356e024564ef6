package main

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/kidonrage/ai-labs/internal/api"
	"github.com/kidonrage/ai-labs/internal/config"
	"github.com/kidonrage/ai-labs/internal/database"
	"github.com/kidonrage/ai-labs/internal/services"
	"github.com/kidonrage/ai-labs/internal/store"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if cfg.Connection.APIKey == "" {
		log.Warn("OPENAI_API_KEY is not set; sends will be rejected until it is configured")
	}

	// Connect to database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	// Initialize services
	snapshots := store.NewSnapshotStore(db.DB)
	svc, err := services.NewServices(cfg, snapshots, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize services")
	}

	// Restore the persisted conversation, if any
	if err := svc.Chat.Restore(context.Background()); err != nil {
		log.WithError(err).Warn("Failed to restore conversation snapshot")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AI Labs",
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Routes
	api.SetupRoutes(app, svc)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.WithField("addr", addr).Info("Starting server")
	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
