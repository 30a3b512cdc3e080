package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	loc *time.Location
}

func NewHealthHandler(loc *time.Location) *HealthHandler {
	return &HealthHandler{loc: loc}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().In(h.loc).Format(time.RFC3339),
		"services": fiber.Map{
			"generator":       "initialized",
			"image_evaluator": "initialized",
			"publisher":       "initialized",
		},
	})
}
