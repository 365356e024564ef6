package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/kidonrage/ai-labs/internal/conversation"
	"github.com/kidonrage/ai-labs/internal/services"
)

// Send performs one full chat turn
func Send(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Text string `json:"text"`
		}

		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		result, err := svc.Chat.Send(c.Context(), req.Text)
		if err != nil {
			status := fiber.StatusBadGateway
			if errors.Is(err, conversation.ErrEmptyInput) || errors.Is(err, conversation.ErrMissingAPIKey) {
				status = fiber.StatusBadRequest
			}
			return c.Status(status).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(result)
	}
}

// GetHistory returns the turn list with per-turn display costs
func GetHistory(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"turns": svc.Chat.History(),
		})
	}
}

// GetSummaries returns the stored summaries in coverage order
func GetSummaries(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"summaries": svc.Chat.Summaries(),
		})
	}
}

// GetTotals returns the combined usage/cost totals
func GetTotals(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Chat.Totals())
	}
}

// ResetChat clears the conversation
func ResetChat(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc.Chat.Reset()
		return c.JSON(fiber.Map{
			"status": "reset",
		})
	}
}

// ExportState returns the persisted form of the conversation. The API key is
// never part of it.
func ExportState(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Chat.Export())
	}
}

// ImportState merges a previously exported snapshot
func ImportState(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc.Chat.Import(c.Body())
		return c.JSON(fiber.Map{
			"status": "imported",
		})
	}
}
