package spotify

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"reco-api-go/logcolors"
)

// Ping probes the Web API with a short timeout. A 401 counts as
// reachable since the probe carries no token.
func (c *Client) Ping(ctx context.Context, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Spotify.APIBaseURL+"/browse/categories?limit=1", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warnf("%s Spotify probe failed: %v", logcolors.LogHealth, err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 300 || resp.StatusCode == http.StatusUnauthorized
}
