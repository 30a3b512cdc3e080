package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/maheshrc27/postpilot/internal/queue"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

type PostHandler struct {
	s           service.PostService
	g           service.GeneratorService
	AsynqClient *asynq.Client
}

func NewPostHandler(service service.PostService, generator service.GeneratorService, asynqClient *asynq.Client) *PostHandler {
	return &PostHandler{s: service, g: generator, AsynqClient: asynqClient}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	var req transfer.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}
	req.IsDraft = false

	// Empty content gets filled by the generator before scheduling.
	if req.Content == "" {
		generated, err := h.g.GenerateText(c.Context(), nil)
		if err != nil {
			return respondError(c, err)
		}
		req.Content = generated.TweetText
	}

	post, delay, err := h.s.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	if delay >= 0 {
		err = queue.EnqueuePost(h.AsynqClient, queue.PublishPostPayload{PostID: post.ID}, delay)
		if err != nil {
			slog.Error(err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error scheduling post",
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(h.s.ToResponse(post))
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)
	includePublished := c.QueryBool("include_published", false)

	notDraft := false
	filter := repository.ListFilter{
		Drafts: &notDraft,
		Limit:  limit,
		Offset: skip,
	}
	if !includePublished {
		notPublished := false
		notCanceled := false
		filter.Published = &notPublished
		filter.Canceled = &notCanceled
	}

	posts, err := h.s.List(c.Context(), filter)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	responses := make([]*transfer.PostResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, h.s.ToResponse(post))
	}

	return c.Status(fiber.StatusOK).JSON(responses)
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	post, err := h.s.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(h.s.ToResponse(post))
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
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

	post, delay, err := h.s.Update(c.Context(), id, &req)
	if err != nil {
		return respondError(c, err)
	}

	// Rescheduled posts get a fresh task; the worker re-checks the post
	// before publishing, so any stale task is a no-op.
	if delay >= 0 {
		err = queue.EnqueuePost(h.AsynqClient, queue.PublishPostPayload{PostID: post.ID}, delay)
		if err != nil {
			slog.Error(err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error scheduling post",
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(h.s.ToResponse(post))
}

func (h *PostHandler) PublishPost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	result, err := h.s.PublishNow(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.s.Remove(c.Context(), id); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post deleted successfully",
	})
}

func (h *PostHandler) CancelPost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.s.Cancel(c.Context(), id, true); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post canceled successfully",
	})
}

func (h *PostHandler) UncancelPost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.s.Cancel(c.Context(), id, false); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post uncanceled successfully",
	})
}

func (h *PostHandler) SchedulePost(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var req transfer.SchedulePostRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	post, delay, err := h.s.Schedule(c.Context(), id, req.ScheduledTime)
	if err != nil {
		return respondError(c, err)
	}

	if delay >= 0 {
		err = queue.EnqueuePost(h.AsynqClient, queue.PublishPostPayload{PostID: post.ID}, delay)
		if err != nil {
			slog.Error(err.Error())
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error scheduling post",
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post scheduled successfully",
		"post":    h.s.ToResponse(post),
	})
}
