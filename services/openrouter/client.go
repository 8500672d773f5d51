package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"reco-api-go/apierr"
	"reco-api-go/config"
	"reco-api-go/logcolors"
)

const defaultTimeout = 60 * time.Second

// Client talks to the chat-completion endpoint. It holds no
// per-request state and is safe for concurrent use.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewClient creates an OpenRouter client from the loaded configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// complete POSTs a chat request and returns the first completion
// choice's content plus token usage. Non-2xx statuses map to typed
// errors using failMessage as the caller-facing message; a response
// without a completion is a parse error. Single-shot: no retry.
func (c *Client) complete(ctx context.Context, chatReq ChatRequest, failMessage string) (string, int, error) {
	if c.cfg.OpenRouter.APIKey == "" {
		return "", 0, apierr.Configuration("OpenRouter API key not configured")
	}

	payload, err := json.Marshal(chatReq)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.cfg.OpenRouter.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.OpenRouter.APIKey)
	req.Header.Set("HTTP-Referer", c.cfg.Server.AppURL)
	req.Header.Set("X-Title", c.cfg.OpenRouter.SiteTitle)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, apierr.Wrap(apierr.KindUpstreamService, failMessage, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Errorf("%s Completion endpoint returned %d for model %s", logcolors.LogAnalysis, resp.StatusCode, chatReq.Model)
		return "", 0, apierr.Upstream(failMessage, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", 0, apierr.Parse("Invalid response from AI service", err)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", 0, apierr.Parse("Invalid response from AI service", nil)
	}

	return chatResp.Choices[0].Message.Content, chatResp.Usage.TotalTokens, nil
}
