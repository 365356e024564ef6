package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kidonrage/ai-labs/internal/api/handlers"
	"github.com/kidonrage/ai-labs/internal/services"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, svc *services.Services) {
	api := app.Group("/api/v1")

	// The active conversation
	api.Post("/chat/send", handlers.Send(svc))
	api.Get("/chat/history", handlers.GetHistory(svc))
	api.Get("/chat/summaries", handlers.GetSummaries(svc))
	api.Get("/chat/totals", handlers.GetTotals(svc))
	api.Post("/chat/reset", handlers.ResetChat(svc))
	api.Get("/chat/export", handlers.ExportState(svc))
	api.Post("/chat/import", handlers.ImportState(svc))

	// Settings
	api.Get("/settings", handlers.GetSettings(svc))
	api.Put("/settings", handlers.UpdateSettings(svc))

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "ai-labs",
		})
	})
}
