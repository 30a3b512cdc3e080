package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

const instagramGraphURL = "https://graph.facebook.com/v22.0"

const (
	containerPollAttempts = 5
	containerPollDelay    = 5 * time.Second
)

type instagramClient struct {
	cfg     config.Instagram
	baseURL string
	client  *http.Client
}

func NewInstagramClient(cfg config.Instagram) PlatformClient {
	return &instagramClient{
		cfg:     cfg,
		baseURL: instagramGraphURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *instagramClient) Name() string {
	return models.PlatformInstagram
}

// Publish runs the Graph flow: create a media container, wait for it to be
// processed, then publish it. Instagram has no text-only posts, so a missing
// image fails.
func (c *instagramClient) Publish(ctx context.Context, content string, imageURL *string) (string, error) {
	if imageURL == nil || *imageURL == "" {
		return "", fmt.Errorf("instagram post requires an image")
	}

	containerID, err := c.createContainer(ctx, content, *imageURL)
	if err != nil {
		return "", err
	}

	if err := c.waitForContainer(ctx, containerID); err != nil {
		return "", err
	}

	mediaID, err := c.publishContainer(ctx, containerID)
	if err != nil {
		return "", err
	}

	return mediaID, nil
}

func (c *instagramClient) createContainer(ctx context.Context, caption, imageURL string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/media", c.baseURL, c.cfg.AccountID)
	payload := map[string]interface{}{
		"image_url":    imageURL,
		"caption":      caption,
		"access_token": c.cfg.AccessToken,
	}
	return c.post(ctx, endpoint, payload)
}

func (c *instagramClient) publishContainer(ctx context.Context, containerID string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/media_publish", c.baseURL, c.cfg.AccountID)
	payload := map[string]interface{}{
		"creation_id":  containerID,
		"access_token": c.cfg.AccessToken,
	}
	return c.post(ctx, endpoint, payload)
}

// waitForContainer polls until the container finishes processing. ERROR and
// EXPIRED are terminal.
func (c *instagramClient) waitForContainer(ctx context.Context, containerID string) error {
	for attempt := 0; attempt < containerPollAttempts; attempt++ {
		status, err := c.containerStatus(ctx, containerID)
		if err != nil {
			return err
		}
		switch status {
		case "FINISHED":
			return nil
		case "ERROR", "EXPIRED":
			return fmt.Errorf("instagram container failed with status %s", status)
		}

		select {
		case <-time.After(containerPollDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("instagram container not ready after %d attempts", containerPollAttempts)
}

func (c *instagramClient) containerStatus(ctx context.Context, containerID string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=status_code&access_token=%s",
		c.baseURL, containerID, url.QueryEscape(c.cfg.AccessToken))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

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
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code from Instagram: %d", resp.StatusCode)
	}

	var status transfer.GraphStatusResponse
	if err := json.Unmarshal(respBody, &status); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	return status.StatusCode, nil
}

func (c *instagramClient) post(ctx context.Context, endpoint string, payload map[string]interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(body))
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

	if resp.StatusCode != http.StatusOK {
		var graphErr transfer.GraphErrorResponse
		if err := json.Unmarshal(respBody, &graphErr); err == nil && graphErr.Error.Message != "" {
			return "", fmt.Errorf("instagram api error: %s", graphErr.Error.Message)
		}
		return "", fmt.Errorf("unexpected status code from Instagram: %d", resp.StatusCode)
	}

	var result transfer.GraphMediaResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("no media ID returned from Instagram")
	}

	return result.ID, nil
}
