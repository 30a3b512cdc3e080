package handlers

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

type GenerateHandler struct {
	g   service.GeneratorService
	img service.ImageService
}

func NewGenerateHandler(generator service.GeneratorService, image service.ImageService) *GenerateHandler {
	return &GenerateHandler{g: generator, img: image}
}

func (h *GenerateHandler) GenerateText(c *fiber.Ctx) error {
	resp, err := h.g.GenerateText(c.Context(), nil)
	if err != nil {
		slog.Error(err.Error())
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *GenerateHandler) GenerateImage(c *fiber.Ctx) error {
	var req transfer.GenerateImageRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	resp, err := h.img.GenerateImage(c.Context(), &req, nil)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// StreamText runs the text pipeline and reports each stage as a
// server-sent event, ending with the generated result as JSON.
func (h *GenerateHandler) StreamText(c *fiber.Ctx) error {
	setStreamHeaders(c)

	ctx := c.Context()
	ctx.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		progress := func(msg string) {
			sseLine(w, msg)
		}

		resp, err := h.g.GenerateText(ctx, progress)
		if err != nil {
			sseLine(w, fmt.Sprintf("Error: %v", err))
			return
		}

		payload, err := json.Marshal(resp)
		if err != nil {
			sseLine(w, fmt.Sprintf("Error: %v", err))
			return
		}
		sseLine(w, string(payload))
	}))

	return nil
}

// StreamImage runs the image pipeline for the tweet_text query parameter,
// reporting progress as server-sent events.
func (h *GenerateHandler) StreamImage(c *fiber.Ctx) error {
	tweetText := c.Query("tweet_text")
	if tweetText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "tweet_text is required",
		})
	}

	setStreamHeaders(c)

	req := transfer.GenerateImageRequest{TweetText: tweetText}
	ctx := c.Context()
	ctx.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		progress := func(msg string) {
			sseLine(w, msg)
		}

		resp, err := h.img.GenerateImage(ctx, &req, progress)
		if err != nil {
			var lowScore *service.LowScoreError
			switch {
			case errors.Is(err, service.ErrNoImages):
				sseLine(w, "No suitable images found.")
			case errors.As(err, &lowScore):
				sseLine(w, "No images met quality threshold.")
			default:
				sseLine(w, fmt.Sprintf("Error: %v", err))
			}
			return
		}

		payload, err := json.Marshal(resp)
		if err != nil {
			sseLine(w, fmt.Sprintf("Error: %v", err))
			return
		}
		sseLine(w, string(payload))
	}))

	return nil
}

func setStreamHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
}

func sseLine(w *bufio.Writer, msg string) {
	fmt.Fprintf(w, "data: %s\n\n", msg)
	w.Flush()
}
