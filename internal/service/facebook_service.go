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
	"net/url"
	"time"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

const facebookGraphURL = "https://graph.facebook.com/v17.0"

type facebookClient struct {
	cfg     config.Facebook
	baseURL string
	media   MediaService
	client  *http.Client
}

func NewFacebookClient(cfg config.Facebook, media MediaService) PlatformClient {
	return &facebookClient{
		cfg:     cfg,
		baseURL: facebookGraphURL,
		media:   media,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *facebookClient) Name() string {
	return models.PlatformFacebook
}

// Publish uploads the image to the page photos edge with the content as its
// message. Page posts here are photo posts, so a missing image fails.
func (c *facebookClient) Publish(ctx context.Context, content string, imageURL *string) (string, error) {
	if imageURL == nil || *imageURL == "" {
		return "", fmt.Errorf("facebook post requires an image")
	}

	token := c.pageToken(ctx)

	data, kind, err := c.media.Fetch(ctx, *imageURL)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("source", "photo."+kind.Extension)
	if err != nil {
		return "", fmt.Errorf("error building upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("error building upload: %w", err)
	}
	if err := w.WriteField("message", content); err != nil {
		return "", fmt.Errorf("error building upload: %w", err)
	}
	if err := w.WriteField("access_token", token); err != nil {
		return "", fmt.Errorf("error building upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("error building upload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/photos", c.baseURL, c.cfg.PageID)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, &buf)
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
	if resp.StatusCode != http.StatusOK {
		var graphErr transfer.GraphErrorResponse
		if err := json.Unmarshal(respBody, &graphErr); err == nil && graphErr.Error.Message != "" {
			return "", fmt.Errorf("facebook api error: %s", graphErr.Error.Message)
		}
		return "", fmt.Errorf("unexpected status code from Facebook: %d", resp.StatusCode)
	}

	var result transfer.FacebookPhotoResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	if result.ID != "" {
		return result.ID, nil
	}
	if result.PostID != "" {
		return result.PostID, nil
	}
	return "", fmt.Errorf("no photo ID returned from Facebook")
}

// pageToken looks up the page and swaps to its page-scoped token when one is
// returned. Lookup failures are not fatal; the configured token is used.
func (c *facebookClient) pageToken(ctx context.Context) string {
	endpoint := fmt.Sprintf("%s/%s?fields=id,name,access_token&access_token=%s",
		c.baseURL, c.cfg.PageID, url.QueryEscape(c.cfg.AccessToken))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		slog.Info(err.Error())
		return c.cfg.AccessToken
	}

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return c.cfg.AccessToken
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.cfg.AccessToken
	}

	var page transfer.FacebookPageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		slog.Info(err.Error())
		return c.cfg.AccessToken
	}
	if page.AccessToken != "" {
		return page.AccessToken
	}
	return c.cfg.AccessToken
}
