package main

import (
	"reco-api-go/cache"
)

type contextKey string

const (
	cacheOnlyModeKey contextKey = "cacheOnlyMode"
	rateLimitTypeKey contextKey = "rateLimitType"
)

// Inbound request payloads.

type textRequest struct {
	Text            string `json:"text"`
	Mood            string `json:"mood"`
	GenrePreference string `json:"genre_preference"`
}

type visualRequest struct {
	ImageData      string `json:"image_data"`
	ImageType      string `json:"image_type"`
	Description    string `json:"description"`
	MoodPreference string `json:"mood_preference"`
}

// explicit_content defaults to true, so absent and false must be
// distinguishable after decoding.
type playlistRequest struct {
	Analysis         string   `json:"analysis"`
	InputType        string   `json:"input_type"`
	PlaylistLength   int      `json:"playlist_length"`
	GenrePreferences []string `json:"genre_preferences"`
	ExplicitContent  *bool    `json:"explicit_content"`
	PopularityRange  string   `json:"popularity_range"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type searchRequest struct {
	AccessToken string `json:"access_token"`
	Query       string `json:"query"`
	Type        string `json:"type"`
	Limit       int    `json:"limit"`
	Market      string `json:"market"`
	Offset      int    `json:"offset"`
}

// analysisCacheValue is what the analysis cache stores per key.
type analysisCacheValue struct {
	Analysis   string `json:"analysis"`
	Model      string `json:"model"`
	TokensUsed int    `json:"tokens_used"`
}

// CacheDump represents the full cache contents
type CacheDump map[string]cache.CacheEntry

// CachePerformance contains cache hit/miss statistics
type CachePerformance struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate_percent"`
}

// CacheDumpResponse is the response format for /cache endpoint
type CacheDumpResponse struct {
	NumberOfKeys int              `json:"number_of_keys"`
	SizeInKB     int              `json:"size_kb"`
	SizeInMB     float64          `json:"size_mb"`
	Performance  CachePerformance `json:"performance"`
	Cache        CacheDump        `json:"cache"`
}
