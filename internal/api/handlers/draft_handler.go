package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

// DraftHandler manages unscheduled drafts. Drafts never enter the publish
// queue; promoting one goes through the schedule or publish endpoints.
type DraftHandler struct {
	s service.PostService
}

func NewDraftHandler(service service.PostService) *DraftHandler {
	return &DraftHandler{s: service}
}

func (h *DraftHandler) ListDrafts(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)

	// Drafts surface by last edit, not by schedule.
	drafts := true
	filter := repository.ListFilter{
		Drafts:      &drafts,
		RecentFirst: true,
		Limit:       limit,
		Offset:      skip,
	}

	posts, err := h.s.List(c.Context(), filter)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list drafts",
		})
	}

	responses := make([]*transfer.PostResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, h.s.ToResponse(post))
	}

	return c.Status(fiber.StatusOK).JSON(responses)
}

func (h *DraftHandler) CreateDraft(c *fiber.Ctx) error {
	var req transfer.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}
	req.IsDraft = true

	post, _, err := h.s.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(h.s.ToResponse(post))
}

func (h *DraftHandler) UpdateDraft(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var req transfer.UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, _, err := h.s.Update(c.Context(), id, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(h.s.ToResponse(post))
}
