package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"reco-api-go/apierr"
	"reco-api-go/config"
)

func testConfig(accountsURL, apiBaseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Spotify.ClientID = "test-client-id"
	cfg.Spotify.ClientSecret = "test-client-secret"
	cfg.Spotify.RedirectURI = "http://localhost:3000/callback"
	cfg.Spotify.AccountsURL = accountsURL
	cfg.Spotify.APIBaseURL = apiBaseURL
	return cfg
}

func TestBuildAuthorizationURL(t *testing.T) {
	cfg := testConfig("https://accounts.spotify.com", "https://api.spotify.com/v1")
	client := NewClient(cfg).WithStateSource(func() string { return "fixed-state" })

	auth, err := client.BuildAuthorizationURL()
	if err != nil {
		t.Fatalf("BuildAuthorizationURL failed: %v", err)
	}

	parsed, err := url.Parse(auth.URL)
	if err != nil {
		t.Fatalf("Auth URL is not a valid URL: %v", err)
	}

	q := parsed.Query()
	if got := q.Get("client_id"); got != "test-client-id" {
		t.Errorf("client_id = %q, expected test-client-id", got)
	}
	if got := q.Get("redirect_uri"); got != "http://localhost:3000/callback" {
		t.Errorf("redirect_uri = %q", got)
	}
	if got := q.Get("response_type"); got != "code" {
		t.Errorf("response_type = %q, expected code", got)
	}
	if got := q.Get("show_dialog"); got != "true" {
		t.Errorf("show_dialog = %q, expected true", got)
	}
	if got := q.Get("state"); got != "fixed-state" {
		t.Errorf("state = %q, expected fixed-state", got)
	}
	if auth.State != "fixed-state" {
		t.Errorf("State = %q, expected fixed-state", auth.State)
	}

	expectedScopes := "playlist-modify-public playlist-modify-private user-read-private user-read-email playlist-read-private playlist-read-collaborative"
	if got := q.Get("scope"); got != expectedScopes {
		t.Errorf("scope = %q, expected the fixed scope list", got)
	}
}

func TestBuildAuthorizationURLStateVaries(t *testing.T) {
	cfg := testConfig("https://accounts.spotify.com", "https://api.spotify.com/v1")
	client := NewClient(cfg)

	first, err := client.BuildAuthorizationURL()
	if err != nil {
		t.Fatalf("BuildAuthorizationURL failed: %v", err)
	}
	second, err := client.BuildAuthorizationURL()
	if err != nil {
		t.Fatalf("BuildAuthorizationURL failed: %v", err)
	}

	if first.State == "" || second.State == "" {
		t.Fatal("Expected non-empty state values")
	}
	if first.State == second.State {
		t.Error("Expected consecutive states to differ")
	}
}

func TestBuildAuthorizationURLMissingConfig(t *testing.T) {
	cfg := testConfig("https://accounts.spotify.com", "https://api.spotify.com/v1")
	cfg.Spotify.RedirectURI = ""
	client := NewClient(cfg)

	_, err := client.BuildAuthorizationURL()
	if err == nil {
		t.Fatal("Expected configuration error")
	}
	e, ok := apierr.As(err)
	if !ok || e.Kind != apierr.KindConfiguration {
		t.Errorf("Expected configuration error kind, got %v", err)
	}
}

func TestExchangeCode(t *testing.T) {
	var gotForm url.Values
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/token" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		r.ParseForm()
		gotForm = r.PostForm
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"access_token": "BQ-access",
			"refresh_token": "AQ-refresh",
			"expires_in": 3600,
			"token_type": "Bearer",
			"scope": "user-read-private"
		}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL, server.URL))
	pair, err := client.ExchangeCode(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("ExchangeCode failed: %v", err)
	}

	if pair.AccessToken != "BQ-access" {
		t.Errorf("AccessToken = %q", pair.AccessToken)
	}
	if pair.RefreshToken != "AQ-refresh" {
		t.Errorf("RefreshToken = %q", pair.RefreshToken)
	}
	if pair.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d", pair.ExpiresIn)
	}

	if gotForm.Get("grant_type") != "authorization_code" {
		t.Errorf("grant_type = %q", gotForm.Get("grant_type"))
	}
	if gotForm.Get("code") != "the-code" {
		t.Errorf("code = %q", gotForm.Get("code"))
	}
	if gotForm.Get("redirect_uri") != "http://localhost:3000/callback" {
		t.Errorf("redirect_uri = %q", gotForm.Get("redirect_uri"))
	}
	if !strings.HasPrefix(gotAuth, "Basic ") {
		t.Errorf("Expected Basic auth header, got %q", gotAuth)
	}
}

func TestExchangeCodeEmptyCode(t *testing.T) {
	// No server: validation must reject before any network call
	client := NewClient(testConfig("http://127.0.0.1:0", "http://127.0.0.1:0"))

	_, err := client.ExchangeCode(context.Background(), "")
	if err == nil {
		t.Fatal("Expected validation error")
	}
	e, ok := apierr.As(err)
	if !ok || e.Kind != apierr.KindValidation {
		t.Fatalf("Expected validation error kind, got %v", err)
	}
	if e.Message != "No authorization code received" {
		t.Errorf("Message = %q", e.Message)
	}
}

func TestExchangeCodeUpstreamRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL, server.URL))
	_, err := client.ExchangeCode(context.Background(), "stale-code")
	if err == nil {
		t.Fatal("Expected upstream auth error")
	}
	e, ok := apierr.As(err)
	if !ok || e.Kind != apierr.KindUpstreamAuth {
		t.Fatalf("Expected upstream auth kind, got %v", err)
	}
	if e.Message != "Failed to exchange code for token" {
		t.Errorf("Message = %q", e.Message)
	}
}

func TestRefreshEchoesTokenWhenNotRotated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("grant_type") != "refresh_token" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		// Provider omits refresh_token: rotation did not happen
		fmt.Fprint(w, `{
			"access_token": "BQ-new-access",
			"expires_in": 3600,
			"token_type": "Bearer",
			"scope": "user-read-private"
		}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL, server.URL))
	pair, err := client.Refresh(context.Background(), "AQ-original")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if pair.AccessToken != "BQ-new-access" {
		t.Errorf("AccessToken = %q", pair.AccessToken)
	}
	if pair.RefreshToken != "AQ-original" {
		t.Errorf("Expected original refresh token to be echoed, got %q", pair.RefreshToken)
	}
}

func TestRefreshForwardsRotatedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"access_token": "BQ-new-access",
			"refresh_token": "AQ-rotated",
			"expires_in": 3600,
			"token_type": "Bearer",
			"scope": "user-read-private"
		}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL, server.URL))
	pair, err := client.Refresh(context.Background(), "AQ-original")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if pair.RefreshToken != "AQ-rotated" {
		t.Errorf("Expected rotated refresh token to be forwarded, got %q", pair.RefreshToken)
	}
}

func TestRefreshEmptyToken(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:0", "http://127.0.0.1:0"))

	_, err := client.Refresh(context.Background(), "")
	if err == nil {
		t.Fatal("Expected validation error")
	}
	e, ok := apierr.As(err)
	if !ok || e.Kind != apierr.KindValidation {
		t.Fatalf("Expected validation error kind, got %v", err)
	}
	if e.Message != "Refresh token is required" {
		t.Errorf("Message = %q", e.Message)
	}
}

func TestTokenRequestMissingCredentials(t *testing.T) {
	cfg := testConfig("https://accounts.spotify.com", "https://api.spotify.com/v1")
	cfg.Spotify.ClientSecret = ""
	client := NewClient(cfg)

	_, err := client.Refresh(context.Background(), "AQ-token")
	if err == nil {
		t.Fatal("Expected configuration error")
	}
	e, ok := apierr.As(err)
	if !ok || e.Kind != apierr.KindConfiguration {
		t.Errorf("Expected configuration error kind, got %v", err)
	}
}
