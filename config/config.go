package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Server struct {
		Port        string `envconfig:"PORT" default:"8080"`
		AppURL      string `envconfig:"APP_URL" default:"http://localhost:3000"`
		Environment string `envconfig:"ENVIRONMENT" default:"development"`
		Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	}

	OpenRouter struct {
		APIKey        string `envconfig:"OPENROUTER_API_KEY" default:""`
		BaseURL       string `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
		TextModel     string `envconfig:"OPENROUTER_TEXT_MODEL" default:"deepseek-chat-v3-0324:free"`
		VisualModel   string `envconfig:"OPENROUTER_VISUAL_MODEL" default:"meta-llama/llama-4-maverick:free"`
		PlaylistModel string `envconfig:"OPENROUTER_PLAYLIST_MODEL" default:"mistral-small-3.1-24b-instruct:free"`
		SiteTitle     string `envconfig:"OPENROUTER_SITE_TITLE" default:"Reco - AI Playlist Generator"`
	}

	Spotify struct {
		ClientID     string `envconfig:"SPOTIFY_CLIENT_ID" default:""`
		ClientSecret string `envconfig:"SPOTIFY_CLIENT_SECRET" default:""`
		RedirectURI  string `envconfig:"SPOTIFY_REDIRECT_URI" default:""`
		AccountsURL  string `envconfig:"SPOTIFY_ACCOUNTS_URL" default:"https://accounts.spotify.com"`
		APIBaseURL   string `envconfig:"SPOTIFY_API_BASE_URL" default:"https://api.spotify.com/v1"`
	}

	Configuration struct {
		RateLimitPerSecond          int    `envconfig:"RATE_LIMIT_PER_SECOND" default:"2"`
		RateLimitBurstLimit         int    `envconfig:"RATE_LIMIT_BURST_LIMIT" default:"5"`
		CachedRateLimitPerSecond    int    `envconfig:"CACHED_RATE_LIMIT_PER_SECOND" default:"10"`
		CachedRateLimitBurstLimit   int    `envconfig:"CACHED_RATE_LIMIT_BURST_LIMIT" default:"20"`
		AnalysisCacheTTLInSeconds   int    `envconfig:"ANALYSIS_CACHE_TTL_IN_SECONDS" default:"86400"`
		HealthProbeTimeoutInSeconds int    `envconfig:"HEALTH_PROBE_TIMEOUT_IN_SECONDS" default:"5"`
		AdminAccessToken            string `envconfig:"ADMIN_ACCESS_TOKEN" default:""`
		APIKey                      string `envconfig:"API_KEY" default:""`
		APIKeyRequired              bool   `envconfig:"API_KEY_REQUIRED" default:"false"`
		CacheDBPath                 string `envconfig:"CACHE_DB_PATH" default:"./data/cache.db"`
		CacheBackupPath             string `envconfig:"CACHE_BACKUP_PATH" default:"./data/backups"`
	}

	FeatureFlags struct {
		CacheCompression bool `envconfig:"FF_CACHE_COMPRESSION" default:"true"`
		AnalysisCache    bool `envconfig:"FF_ANALYSIS_CACHE" default:"true"`
	}
}

// OpenRouterConfigured reports whether the language-model provider key is set.
func (c *Config) OpenRouterConfigured() bool {
	return c.OpenRouter.APIKey != ""
}

// SpotifyConfigured reports whether the catalog provider credentials are set.
func (c *Config) SpotifyConfigured() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// load loads the configuration from the environment.
func load() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Warnf("Error loading env config: %v", err)
	}

	cfg := Config{}
	err = envconfig.Process("", &cfg)
	return cfg, err
}

// Load loads the configuration once at process start. Handlers receive
// the result by reference and never read ambient env state themselves.
func Load() *Config {
	c, err := load()
	if err != nil {
		log.WithError(err).Warnf("Unable to load configuration")
	}

	return &c
}
