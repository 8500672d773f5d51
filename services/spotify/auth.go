package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"reco-api-go/apierr"
	"reco-api-go/logcolors"
)

// Scopes requested at login. Fixed list; callers cannot extend it.
var Scopes = []string{
	"playlist-modify-public",
	"playlist-modify-private",
	"user-read-private",
	"user-read-email",
	"playlist-read-private",
	"playlist-read-collaborative",
}

// BuildAuthorizationURL constructs the provider's login redirect URL
// with a freshly generated anti-forgery state value. The state is
// returned to the caller; this service keeps no copy, so verification
// at callback time is the caller's responsibility.
func (c *Client) BuildAuthorizationURL() (*AuthorizationURL, error) {
	if c.cfg.Spotify.ClientID == "" || c.cfg.Spotify.RedirectURI == "" {
		return nil, apierr.Configuration("Spotify configuration missing")
	}

	state := c.state()

	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", c.cfg.Spotify.ClientID)
	params.Set("scope", strings.Join(Scopes, " "))
	params.Set("redirect_uri", c.cfg.Spotify.RedirectURI)
	params.Set("state", state)
	params.Set("show_dialog", "true")

	authURL := c.cfg.Spotify.AccountsURL + "/authorize?" + params.Encode()

	log.Debugf("%s Built authorization URL for client %s", logcolors.LogAuth, c.cfg.Spotify.ClientID)

	return &AuthorizationURL{URL: authURL, State: state}, nil
}

// ExchangeCode turns an authorization code into an access/refresh
// token pair. Single outbound call, no retry, no persistence.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenPair, error) {
	if code == "" {
		return nil, apierr.Validation("No authorization code received")
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.cfg.Spotify.RedirectURI)

	pair, err := c.tokenRequest(ctx, form, "Failed to exchange code for token")
	if err != nil {
		return nil, err
	}

	log.Infof("%s Exchanged authorization code for token pair (expires in %ds)", logcolors.LogAuth, pair.ExpiresIn)
	return pair, nil
}

// Refresh turns a refresh token into a new access token. If the
// provider rotated the refresh token the new one is forwarded; if not,
// the caller's original is echoed back so the caller can always
// persist whichever token the response carries.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apierr.Validation("Refresh token is required")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	pair, err := c.tokenRequest(ctx, form, "Failed to refresh token")
	if err != nil {
		return nil, err
	}

	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}

	log.Infof("%s Refreshed access token (rotation: %v)", logcolors.LogAuth, pair.RefreshToken != refreshToken)
	return pair, nil
}

// tokenRequest POSTs a form to the provider's token endpoint with
// Basic-authenticated client credentials and maps the response.
func (c *Client) tokenRequest(ctx context.Context, form url.Values, failMessage string) (*TokenPair, error) {
	if c.cfg.Spotify.ClientID == "" || c.cfg.Spotify.ClientSecret == "" {
		return nil, apierr.Configuration("Spotify configuration missing")
	}

	endpoint := c.cfg.Spotify.AccountsURL + "/api/token"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.Spotify.ClientID, c.cfg.Spotify.ClientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindUpstreamService, failMessage, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Errorf("%s Token endpoint returned %d: %s", logcolors.LogAuth, resp.StatusCode, string(body))
		return nil, apierr.UpstreamAuth(failMessage, resp.StatusCode)
	}

	var pair TokenPair
	if err := json.Unmarshal(body, &pair); err != nil {
		return nil, apierr.Parse("Invalid response from token endpoint", err)
	}

	return &pair, nil
}
