package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kidonrage/ai-labs/internal/services"
)

// GetSettings returns the current connection config and context policy
func GetSettings(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Chat.CurrentSettings())
	}
}

// UpdateSettings merge-patches the connection config and context policy
func UpdateSettings(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req services.Settings
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		if err := svc.Chat.UpdateSettings(req); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(svc.Chat.CurrentSettings())
	}
}
