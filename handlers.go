package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"reco-api-go/apierr"
	"reco-api-go/cache"
	"reco-api-go/config"
	"reco-api-go/logcolors"
	"reco-api-go/services/openrouter"
	"reco-api-go/services/spotify"
	"reco-api-go/stats"
)

// App wires the loaded configuration and provider clients into the
// HTTP handlers. Handlers never read ambient env state.
type App struct {
	cfg        *config.Config
	openrouter *openrouter.Client
	spotify    *spotify.Client
	cache      *cache.PersistentCache
	startedAt  time.Time
}

func NewApp(cfg *config.Config, or *openrouter.Client, sp *spotify.Client, pc *cache.PersistentCache) *App {
	return &App{
		cfg:        cfg,
		openrouter: or,
		spotify:    sp,
		cache:      pc,
		startedAt:  time.Now(),
	}
}

// recordUpstreamFailure counts provider-side failures only. Caller
// mistakes (validation, missing config) are not upstream errors.
func recordUpstreamFailure(provider string, err error) {
	if apiErr, ok := apierr.As(err); ok {
		switch apiErr.Kind {
		case apierr.KindUpstreamAuth, apierr.KindUpstreamRateLimit, apierr.KindUpstreamService, apierr.KindParse:
			stats.Get().RecordUpstreamError(provider)
		}
	}
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Respond(w, r).Error(http.StatusMethodNotAllowed, map[string]interface{}{
		"error": "Method not allowed",
	})
}

func analysisMetadata(model string, tokens int, imageProcessed bool) map[string]interface{} {
	metadata := map[string]interface{}{
		"model":       model,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"tokens_used": tokens,
	}
	if imageProcessed {
		metadata["image_processed"] = true
	}
	return metadata
}

// analysisCacheKey hashes the full analysis input so that different
// hints never collide on the same cached response.
func analysisCacheKey(req textRequest) string {
	h := sha256.Sum256([]byte(req.Text + "\x00" + req.Mood + "\x00" + req.GenrePreference))
	return "analysis:" + hex.EncodeToString(h[:])
}

func (app *App) handleTextAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		Respond(w, r).JSON(map[string]interface{}{
			"message": "Text analysis endpoint",
			"method":  "POST",
			"body": map[string]string{
				"text":             "required, 1-5000 characters",
				"mood":             "optional mood hint",
				"genre_preference": "optional genre hint",
			},
		})
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Respond(w, r).Error(http.StatusBadRequest, map[string]interface{}{"error": "Invalid request body"})
		return
	}

	in := openrouter.TextAnalysisInput{
		Text:            req.Text,
		Mood:            req.Mood,
		GenrePreference: req.GenrePreference,
	}
	if err := in.Validate(); err != nil {
		Respond(w, r).APIError(err)
		return
	}

	cacheKey := analysisCacheKey(req)
	if app.cfg.FeatureFlags.AnalysisCache {
		if cached, ok := app.cache.Get(cacheKey); ok {
			var val analysisCacheValue
			if err := json.Unmarshal([]byte(cached), &val); err == nil {
				stats.Get().RecordCacheHit()
				log.Infof("%s Serving cached analysis", logcolors.LogCacheAnalysis)
				Respond(w, r).SetCacheStatus("HIT").JSON(map[string]interface{}{
					"success":      true,
					"analysis":     val.Analysis,
					"originalText": req.Text,
					"metadata":     analysisMetadata(val.Model, val.TokensUsed, false),
				})
				return
			}
		}
	}

	// Cached-only rate limit tier cannot trigger a fresh model call
	cacheOnlyMode, _ := r.Context().Value(cacheOnlyModeKey).(bool)
	if cacheOnlyMode {
		stats.Get().RecordCacheMiss()
		stats.Get().RecordRateLimit("exceeded")
		log.Warnf("%s Cache-only mode but no cached analysis for this input", logcolors.LogCacheAnalysis)
		w.Header().Set("Retry-After", "60")
		Respond(w, r).SetCacheStatus("MISS").Error(http.StatusTooManyRequests, map[string]interface{}{
			"error":   "Rate limit exceeded. This request requires cached data, but no cache is available for this query.",
			"message": "Please try again later or reduce your request rate.",
		})
		return
	}

	result, err := app.openrouter.AnalyzeText(r.Context(), in)
	if err != nil {
		recordUpstreamFailure("openrouter", err)
		Respond(w, r).APIError(err)
		return
	}

	if app.cfg.FeatureFlags.AnalysisCache {
		stats.Get().RecordCacheMiss()
		val, err := json.Marshal(analysisCacheValue{
			Analysis:   result.Analysis,
			Model:      result.Model,
			TokensUsed: result.TokensUsed,
		})
		if err == nil {
			ttl := time.Duration(app.cfg.Configuration.AnalysisCacheTTLInSeconds) * time.Second
			if err := app.cache.SetWithTTL(cacheKey, string(val), ttl); err != nil {
				log.Errorf("%s Failed to cache analysis: %v", logcolors.LogCacheAnalysis, err)
			}
		}
	}

	Respond(w, r).SetCacheStatus("MISS").JSON(map[string]interface{}{
		"success":      true,
		"analysis":     result.Analysis,
		"originalText": req.Text,
		"metadata":     analysisMetadata(result.Model, result.TokensUsed, false),
	})
}

func (app *App) handleVisualAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		Respond(w, r).JSON(map[string]interface{}{
			"message": "Visual analysis endpoint",
			"method":  "POST",
			"body": map[string]string{
				"image_data":      "required, base64 image bytes or a URL",
				"image_type":      "base64 or url, default base64",
				"description":     "optional context for the image",
				"mood_preference": "optional mood hint",
			},
		})
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	var req visualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Respond(w, r).Error(http.StatusBadRequest, map[string]interface{}{"error": "Invalid request body"})
		return
	}

	if req.ImageType == "" {
		req.ImageType = string(openrouter.ImageTypeBase64)
	}

	result, err := app.openrouter.AnalyzeImage(r.Context(), openrouter.VisualAnalysisInput{
		ImageData:      req.ImageData,
		ImageType:      openrouter.ImageType(req.ImageType),
		Description:    req.Description,
		MoodPreference: req.MoodPreference,
	})
	if err != nil {
		recordUpstreamFailure("openrouter", err)
		Respond(w, r).APIError(err)
		return
	}

	Respond(w, r).JSON(map[string]interface{}{
		"success":  true,
		"analysis": result.Analysis,
		"metadata": analysisMetadata(result.Model, result.TokensUsed, true),
	})
}

func (app *App) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		Respond(w, r).JSON(map[string]interface{}{
			"message": "Playlist generation endpoint",
			"method":  "POST",
			"body": map[string]string{
				"analysis":          "required, output of a text or visual analysis",
				"input_type":        "text or visual, default text",
				"playlist_length":   "5-50, default 20",
				"genre_preferences": "optional genre list",
				"explicit_content":  "default true",
				"popularity_range":  "mainstream, underground or mixed, default mixed",
			},
		})
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Respond(w, r).Error(http.StatusBadRequest, map[string]interface{}{"error": "Invalid request body"})
		return
	}

	if req.InputType == "" {
		req.InputType = string(openrouter.InputText)
	}
	if req.PlaylistLength == 0 {
		req.PlaylistLength = 20
	}
	if req.PopularityRange == "" {
		req.PopularityRange = string(openrouter.PopularityMixed)
	}
	explicit := true
	if req.ExplicitContent != nil {
		explicit = *req.ExplicitContent
	}

	in := openrouter.PlaylistInput{
		Analysis:         req.Analysis,
		InputType:        openrouter.InputType(req.InputType),
		PlaylistLength:   req.PlaylistLength,
		GenrePreferences: req.GenrePreferences,
		ExplicitContent:  explicit,
		PopularityRange:  openrouter.PopularityRange(req.PopularityRange),
	}

	result, err := app.openrouter.GeneratePlaylist(r.Context(), in)
	if err != nil {
		recordUpstreamFailure("openrouter", err)
		Respond(w, r).APIError(err)
		return
	}

	playlist := result.Playlist
	playlist["generated_from"] = req.InputType
	playlist["track_count"] = result.TrackCount

	Respond(w, r).JSON(map[string]interface{}{
		"success":  true,
		"playlist": playlist,
		"metadata": map[string]interface{}{
			"model":             result.Model,
			"timestamp":         time.Now().UTC().Format(time.RFC3339),
			"tokens_used":       result.TokensUsed,
			"generation_params": in.GenerationParams(),
		},
	})
}

func (app *App) handleSpotifyAuth(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		app.handleAuthAction(w, r)
	case http.MethodPost:
		app.handleRefresh(w, r)
	default:
		methodNotAllowed(w, r)
	}
}

func tokenResponse(pair *spotify.TokenPair) map[string]interface{} {
	return map[string]interface{}{
		"success":       true,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_in":    pair.ExpiresIn,
		"token_type":    pair.TokenType,
		"scope":         pair.Scope,
	}
}

func (app *App) handleAuthAction(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch q.Get("action") {
	case "login":
		auth, err := app.spotify.BuildAuthorizationURL()
		if err != nil {
			Respond(w, r).APIError(err)
			return
		}
		log.Infof("%s Issued authorization URL", logcolors.LogAuth)
		Respond(w, r).JSON(map[string]interface{}{
			"success":  true,
			"auth_url": auth.URL,
			"state":    auth.State,
		})

	case "callback":
		if authErr := q.Get("error"); authErr != "" {
			log.Warnf("%s Authorization denied: %s", logcolors.LogAuth, authErr)
			Respond(w, r).Error(http.StatusBadRequest, map[string]interface{}{
				"error": fmt.Sprintf("Spotify auth error: %s", authErr),
			})
			return
		}

		pair, err := app.spotify.ExchangeCode(r.Context(), q.Get("code"))
		if err != nil {
			recordUpstreamFailure("spotify", err)
			Respond(w, r).APIError(err)
			return
		}
		log.Infof("%s Exchanged authorization code", logcolors.LogAuth)
		Respond(w, r).JSON(tokenResponse(pair))

	default:
		Respond(w, r).JSON(map[string]interface{}{
			"message":           "Spotify auth endpoint",
			"available_actions": []string{"login", "callback"},
		})
	}
}

func (app *App) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Respond(w, r).Error(http.StatusBadRequest, map[string]interface{}{"error": "Invalid request body"})
		return
	}

	pair, err := app.spotify.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		recordUpstreamFailure("spotify", err)
		Respond(w, r).APIError(err)
		return
	}
	log.Infof("%s Refreshed access token", logcolors.LogAuth)
	Respond(w, r).JSON(tokenResponse(pair))
}

func (app *App) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		Respond(w, r).JSON(map[string]interface{}{
			"message": "Spotify search endpoint",
			"method":  "POST",
			"body": map[string]string{
				"access_token": "required, Spotify access token",
				"query":        "required, search terms",
				"type":         "track, artist, album or playlist, default track",
				"limit":        "1-50, default 20",
				"market":       "2-letter country code, default US",
				"offset":       ">= 0, default 0",
			},
		})
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Respond(w, r).Error(http.StatusBadRequest, map[string]interface{}{"error": "Invalid request body"})
		return
	}

	if req.AccessToken == "" {
		Respond(w, r).APIError(apierr.Validation("Access token is required"))
		return
	}
	if req.Query == "" {
		Respond(w, r).APIError(apierr.Validation("Search query is required"))
		return
	}

	entityType, err := spotify.ParseEntityType(req.Type)
	if err != nil {
		Respond(w, r).APIError(err)
		return
	}
	if req.Limit == 0 {
		req.Limit = 20
	}
	if req.Limit < 1 || req.Limit > 50 {
		Respond(w, r).APIError(apierr.Validation("Limit must be between 1 and 50"))
		return
	}
	if req.Market == "" {
		req.Market = "US"
	}
	if len(req.Market) != 2 {
		Respond(w, r).APIError(apierr.Validation("Market must be a 2-letter country code"))
		return
	}
	if req.Offset < 0 {
		Respond(w, r).APIError(apierr.Validation("Offset must be non-negative"))
		return
	}

	log.Infof("%s Searching %s for %q", logcolors.LogSearch, entityType, req.Query)
	results, err := app.spotify.Search(r.Context(), spotify.SearchParams{
		AccessToken: req.AccessToken,
		Query:       req.Query,
		Type:        entityType,
		Limit:       req.Limit,
		Market:      req.Market,
		Offset:      req.Offset,
	})
	if err != nil {
		recordUpstreamFailure("spotify", err)
		Respond(w, r).APIError(err)
		return
	}

	Respond(w, r).JSON(map[string]interface{}{
		"success": true,
		"results": results.Results,
		"total":   results.Total,
		"type":    string(entityType),
		"query":   req.Query,
		"limit":   req.Limit,
		"offset":  req.Offset,
	})
}

func (app *App) authorized(r *http.Request) bool {
	token := app.cfg.Configuration.AdminAccessToken
	return token != "" && r.Header.Get("Authorization") == token
}

func (app *App) handleStats(w http.ResponseWriter, r *http.Request) {
	if !app.authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	s := stats.Get()
	snapshot := s.Snapshot()

	numKeys, sizeInKB := app.cache.Stats()
	snapshot["cache_storage"] = map[string]interface{}{
		"keys":    numKeys,
		"size_kb": sizeInKB,
		"size_mb": float64(sizeInKB) / 1024,
	}

	Respond(w, r).JSON(snapshot)
}

func (app *App) handleCacheDump(w http.ResponseWriter, r *http.Request) {
	if !app.authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cacheDump := CacheDump{}
	app.cache.Range(func(key string, entry cache.CacheEntry) bool {
		cacheDump[key] = entry
		return true
	})

	numKeys, sizeInKB := app.cache.Stats()
	s := stats.Get()

	Respond(w, r).JSON(CacheDumpResponse{
		NumberOfKeys: numKeys,
		SizeInKB:     sizeInKB,
		SizeInMB:     float64(sizeInKB) / 1024,
		Performance: CachePerformance{
			Hits:    s.CacheHits.Load(),
			Misses:  s.CacheMisses.Load(),
			HitRate: s.CacheHitRate(),
		},
		Cache: cacheDump,
	})
}

func (app *App) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if !app.authorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	backupPath, err := app.cache.BackupAndClear()
	if err != nil {
		log.Errorf("%s Failed to backup and clear cache: %v", logcolors.LogCacheClear, err)
		Respond(w, r).Error(http.StatusInternalServerError, map[string]interface{}{
			"error": fmt.Sprintf("Failed to backup and clear cache: %v", err),
		})
		return
	}

	log.Infof("%s Cache cleared successfully, backup at: %s", logcolors.LogCacheClear, backupPath)
	Respond(w, r).JSON(map[string]interface{}{
		"message":     "Cache cleared successfully",
		"backup_path": backupPath,
	})
}

func helpHandler(w http.ResponseWriter, r *http.Request) {
	Respond(w, r).JSON(map[string]interface{}{
		"name": "Reco API",
		"endpoints": map[string]string{
			"/openrouter/text":     "POST text for mood and theme analysis",
			"/openrouter/visual":   "POST an image for mood and theme analysis",
			"/openrouter/playlist": "POST an analysis to generate a playlist",
			"/spotify/auth":        "GET action=login|callback, POST to refresh tokens",
			"/spotify/search":      "POST to search the Spotify catalog",
			"/health":              "GET service health",
		},
	})
}
