package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/postpilot/internal/service"
)

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid post id")
	}
	return id, nil
}

// statusFromError maps service errors onto HTTP status codes.
func statusFromError(err error) int {
	var (
		validationErr *service.ValidationError
		conflictErr   *service.ConflictError
		lowScoreErr   *service.LowScoreError
	)
	switch {
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNoImages):
		return fiber.StatusNotFound
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.As(err, &lowScoreErr):
		return fiber.StatusBadRequest
	case errors.As(err, &conflictErr):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(statusFromError(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
