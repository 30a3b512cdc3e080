package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

const pinterestAPIURL = "https://api.pinterest.com/v5"

type pinterestClient struct {
	cfg     config.Pinterest
	baseURL string
	media   MediaService
	client  *http.Client
}

// NewPinterestClient builds a client around the pre-provisioned v5 access
// token. The oauth2 transport injects the bearer header on every request.
func NewPinterestClient(cfg config.Pinterest, media MediaService) PlatformClient {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
	client := oauth2.NewClient(context.Background(), src)
	client.Timeout = 30 * time.Second
	return &pinterestClient{
		cfg:     cfg,
		baseURL: pinterestAPIURL,
		media:   media,
		client:  client,
	}
}

func (c *pinterestClient) Name() string {
	return models.PlatformPinterest
}

// Publish uploads the image to the media endpoint and creates a pin from the
// returned media ID. Pins are image-first, so a missing image fails.
func (c *pinterestClient) Publish(ctx context.Context, content string, imageURL *string) (string, error) {
	if imageURL == nil || *imageURL == "" {
		return "", fmt.Errorf("pinterest pin requires an image")
	}

	mediaID, err := c.uploadMedia(ctx, *imageURL)
	if err != nil {
		return "", err
	}

	return c.createPin(ctx, content, mediaID)
}

func (c *pinterestClient) uploadMedia(ctx context.Context, imageURL string) (string, error) {
	data, kind, err := c.media.Fetch(ctx, imageURL)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "pin."+kind.Extension)
	if err != nil {
		return "", fmt.Errorf("error building upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("error building upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("error building upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/media", &buf)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		var pinErr transfer.PinterestErrorResponse
		if err := json.Unmarshal(respBody, &pinErr); err == nil && pinErr.Message != "" {
			return "", fmt.Errorf("pinterest media upload error: %s", pinErr.Message)
		}
		return "", fmt.Errorf("unexpected status code from Pinterest media upload: %d", resp.StatusCode)
	}

	var media transfer.PinterestMediaResponse
	if err := json.Unmarshal(respBody, &media); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	if media.ID == "" {
		return "", fmt.Errorf("no media ID returned from Pinterest")
	}

	return media.ID, nil
}

func (c *pinterestClient) createPin(ctx context.Context, content, mediaID string) (string, error) {
	pin := transfer.PinterestPinRequest{
		BoardID:     c.cfg.BoardID,
		Title:       content,
		Description: content,
		MediaSource: transfer.PinterestMediaSource{
			MediaID: mediaID,
		},
	}

	body, err := json.Marshal(pin)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/pins", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		var pinErr transfer.PinterestErrorResponse
		if err := json.Unmarshal(respBody, &pinErr); err == nil && pinErr.Message != "" {
			return "", fmt.Errorf("pinterest api error: %s", pinErr.Message)
		}
		return "", fmt.Errorf("unexpected status code from Pinterest: %d", resp.StatusCode)
	}

	var result transfer.PinterestPinResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("no pin ID returned from Pinterest")
	}

	return result.ID, nil
}
