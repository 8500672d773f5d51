package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reco-api-go/apierr"
	"reco-api-go/config"
)

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.OpenRouter.APIKey = "test-api-key"
	cfg.OpenRouter.BaseURL = baseURL
	cfg.OpenRouter.TextModel = "test/text-model"
	cfg.OpenRouter.VisualModel = "test/visual-model"
	cfg.OpenRouter.PlaylistModel = "test/playlist-model"
	cfg.OpenRouter.SiteTitle = "Test Title"
	cfg.Server.AppURL = "http://localhost:3000"
	return cfg
}

func completionBody(content string, tokens int) string {
	resp := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
		"usage": map[string]int{"total_tokens": tokens},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestAnalyzeText(t *testing.T) {
	var captured ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-api-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("HTTP-Referer"); got != "http://localhost:3000" {
			t.Errorf("HTTP-Referer = %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "Test Title" {
			t.Errorf("X-Title = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		fmt.Fprint(w, completionBody("A calm, reflective mood.", 321))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	result, err := client.AnalyzeText(context.Background(), TextAnalysisInput{
		Text: "rainy sunday afternoon",
		Mood: "mellow",
	})
	if err != nil {
		t.Fatalf("AnalyzeText failed: %v", err)
	}

	if result.Analysis != "A calm, reflective mood." {
		t.Errorf("Analysis = %q", result.Analysis)
	}
	if result.Model != "test/text-model" {
		t.Errorf("Model = %q", result.Model)
	}
	if result.TokensUsed != 321 {
		t.Errorf("TokensUsed = %d, expected 321", result.TokensUsed)
	}
	if captured.Model != "test/text-model" {
		t.Errorf("Requested model = %q", captured.Model)
	}
	if captured.MaxTokens != 1000 {
		t.Errorf("MaxTokens = %d, expected 1000", captured.MaxTokens)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(captured.Messages))
	}
	user, ok := captured.Messages[1].Content.(string)
	if !ok {
		t.Fatalf("User content is %T, expected string", captured.Messages[1].Content)
	}
	if !strings.Contains(user, "rainy sunday afternoon") {
		t.Errorf("User prompt missing input text: %q", user)
	}
	if !strings.Contains(user, "mellow") {
		t.Errorf("User prompt missing mood hint: %q", user)
	}
}

func TestAnalyzeTextValidation(t *testing.T) {
	// No server: validation failures must never reach the network.
	client := NewClient(testConfig("http://127.0.0.1:0"))

	tests := []struct {
		name    string
		text    string
		message string
	}{
		{"empty", "", "Text is required"},
		{"too long", strings.Repeat("a", MaxTextLength+1), "Text too long"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.AnalyzeText(context.Background(), TextAnalysisInput{Text: tc.text})
			apiErr, ok := apierr.As(err)
			if !ok {
				t.Fatalf("Expected a typed error, got %v", err)
			}
			if apiErr.Kind != apierr.KindValidation {
				t.Errorf("Kind = %v, expected validation", apiErr.Kind)
			}
			if apiErr.Message != tc.message {
				t.Errorf("Message = %q, expected %q", apiErr.Message, tc.message)
			}
		})
	}
}

func TestAnalyzeTextAtMaxLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionBody("ok", 1))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.AnalyzeText(context.Background(), TextAnalysisInput{
		Text: strings.Repeat("a", MaxTextLength),
	})
	if err != nil {
		t.Fatalf("Text at the limit should be accepted: %v", err)
	}
}

func TestAnalyzeTextMissingAPIKey(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:0")
	cfg.OpenRouter.APIKey = ""
	client := NewClient(cfg)

	_, err := client.AnalyzeText(context.Background(), TextAnalysisInput{Text: "hello"})
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("Expected a typed error, got %v", err)
	}
	if apiErr.Kind != apierr.KindConfiguration {
		t.Errorf("Kind = %v, expected configuration", apiErr.Kind)
	}
}

func TestAnalyzeTextUpstreamStatuses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantKind   apierr.Kind
		wantStatus int
	}{
		{"rate limited", http.StatusTooManyRequests, apierr.KindUpstreamRateLimit, http.StatusTooManyRequests},
		{"server error", http.StatusBadGateway, apierr.KindUpstreamService, http.StatusBadGateway},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			client := NewClient(testConfig(server.URL))
			_, err := client.AnalyzeText(context.Background(), TextAnalysisInput{Text: "hello"})
			apiErr, ok := apierr.As(err)
			if !ok {
				t.Fatalf("Expected a typed error, got %v", err)
			}
			if apiErr.Kind != tc.wantKind {
				t.Errorf("Kind = %v, expected %v", apiErr.Kind, tc.wantKind)
			}
			if apiErr.Message != "Failed to process text" {
				t.Errorf("Message = %q", apiErr.Message)
			}
			if apiErr.Status() != tc.wantStatus {
				t.Errorf("Status() = %d, expected %d", apiErr.Status(), tc.wantStatus)
			}
		})
	}
}

func TestAnalyzeTextEmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[],"usage":{"total_tokens":0}}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.AnalyzeText(context.Background(), TextAnalysisInput{Text: "hello"})
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("Expected a typed error, got %v", err)
	}
	if apiErr.Kind != apierr.KindParse {
		t.Errorf("Kind = %v, expected parse", apiErr.Kind)
	}
	if apiErr.Message != "Invalid response from AI service" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestAnalyzeImage(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
		MaxTokens int `json:"max_tokens"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		fmt.Fprint(w, completionBody("Warm sunset colors, relaxed energy.", 512))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	result, err := client.AnalyzeImage(context.Background(), VisualAnalysisInput{
		ImageData: "aGVsbG8=",
		ImageType: ImageTypeBase64,
	})
	if err != nil {
		t.Fatalf("AnalyzeImage failed: %v", err)
	}

	if result.Model != "test/visual-model" {
		t.Errorf("Model = %q", result.Model)
	}
	if captured.MaxTokens != 1200 {
		t.Errorf("MaxTokens = %d, expected 1200", captured.MaxTokens)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(captured.Messages))
	}

	var parts []ContentPart
	if err := json.Unmarshal(captured.Messages[1].Content, &parts); err != nil {
		t.Fatalf("User content is not a part list: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("Expected 2 content parts, got %d", len(parts))
	}
	if parts[0].Type != "text" || parts[0].Text == "" {
		t.Errorf("First part = %+v, expected a text block", parts[0])
	}
	if parts[1].Type != "image_url" {
		t.Errorf("Second part type = %q, expected image_url", parts[1].Type)
	}
	if parts[1].ImageURL == nil || parts[1].ImageURL.URL != "data:image/jpeg;base64,aGVsbG8=" {
		t.Errorf("Image URL = %+v, expected a jpeg data URL", parts[1].ImageURL)
	}
}

func TestAnalyzeImageKeepsDataURL(t *testing.T) {
	in := VisualAnalysisInput{
		ImageData: "data:image/png;base64,aGVsbG8=",
		ImageType: ImageTypeBase64,
	}
	part := in.imageContent()
	if part.ImageURL.URL != "data:image/png;base64,aGVsbG8=" {
		t.Errorf("Data URL was rewrapped: %q", part.ImageURL.URL)
	}
}

func TestAnalyzeImageValidation(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:0"))

	_, err := client.AnalyzeImage(context.Background(), VisualAnalysisInput{ImageType: ImageTypeBase64})
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("Expected a typed error, got %v", err)
	}
	if apiErr.Message != "Image data is required" {
		t.Errorf("Message = %q", apiErr.Message)
	}

	_, err = client.AnalyzeImage(context.Background(), VisualAnalysisInput{ImageData: "x", ImageType: "svg"})
	apiErr, ok = apierr.As(err)
	if !ok {
		t.Fatalf("Expected a typed error, got %v", err)
	}
	if apiErr.Kind != apierr.KindValidation {
		t.Errorf("Kind = %v, expected validation", apiErr.Kind)
	}
}

func TestPing(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{"healthy", http.StatusOK, true},
		{"unauthorized", http.StatusUnauthorized, false},
		{"server error", http.StatusInternalServerError, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/models" {
					t.Errorf("Unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			client := NewClient(testConfig(server.URL))
			if got := client.Ping(context.Background(), defaultTimeout); got != tc.want {
				t.Errorf("Ping = %v, expected %v", got, tc.want)
			}
		})
	}
}
