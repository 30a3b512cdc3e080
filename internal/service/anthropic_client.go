package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
)

type anthropicClient struct {
	cfg     config.Anthropic
	baseURL string
	client  *http.Client
}

// newAnthropicClient retries transient API failures twice before giving up.
// Generation calls can run long, hence the generous timeout.
func newAnthropicClient(cfg config.Anthropic) *anthropicClient {
	retry := retryablehttp.NewClient()
	retry.RetryMax = 2
	retry.Logger = nil
	client := retry.StandardClient()
	client.Timeout = 2 * time.Minute
	return &anthropicClient{
		cfg:     cfg,
		baseURL: anthropicMessagesURL,
		client:  client,
	}
}

// messages calls the messages API. The request model defaults to the
// configured one.
func (a *anthropicClient) messages(ctx context.Context, req *transfer.AnthropicRequest) (*transfer.AnthropicResponse, error) {
	if req.Model == "" {
		req.Model = a.cfg.Model
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error marshalling payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.baseURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var result transfer.AnthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if result.Error != nil && result.Error.Message != "" {
			return nil, fmt.Errorf("anthropic api error: %s", result.Error.Message)
		}
		return nil, fmt.Errorf("unexpected status code from Anthropic: %d", resp.StatusCode)
	}

	return &result, nil
}

// responseText concatenates the text blocks of a model response.
func responseText(resp *transfer.AnthropicResponse) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// toolInput unmarshals the input of the named tool_use block into out.
func toolInput(resp *transfer.AnthropicResponse, name string, out any) error {
	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == name {
			return json.Unmarshal(block.Input, out)
		}
	}
	return fmt.Errorf("no %s tool call in response", name)
}
