package openrouter

import (
	"context"
	"net/http"
	"time"
)

// Ping reports whether the completion provider is reachable. It hits
// the model catalog endpoint, which is cheap and does not consume
// completion quota.
func (c *Client) Ping(ctx context.Context, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.OpenRouter.BaseURL+"/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.OpenRouter.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
