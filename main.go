package main

import (
	"net/http"
	"os"

	"golang.org/x/time/rate"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"reco-api-go/cache"
	"reco-api-go/config"
	"reco-api-go/middleware"
	"reco-api-go/services/openrouter"
	"reco-api-go/services/spotify"
)

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}

func main() {
	cfg := config.Load()

	persistentCache, err := cache.NewPersistentCache(
		cfg.Configuration.CacheDBPath,
		cfg.Configuration.CacheBackupPath,
		cfg.FeatureFlags.CacheCompression,
	)
	if err != nil {
		log.Fatalf("Failed to open persistent cache: %v", err)
	}
	defer persistentCache.Close()

	app := NewApp(cfg, openrouter.NewClient(cfg), spotify.NewClient(cfg), persistentCache)

	router := mux.NewRouter()
	setupRoutes(router, app)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Server.AppURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodHead, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-API-Key"},
		AllowCredentials: true,
	})

	limiter := middleware.NewIPRateLimiter(
		middleware.Tier{
			Rate:  rate.Limit(cfg.Configuration.RateLimitPerSecond),
			Burst: cfg.Configuration.RateLimitBurstLimit,
		},
		middleware.Tier{
			Rate:  rate.Limit(cfg.Configuration.CachedRateLimitPerSecond),
			Burst: cfg.Configuration.CachedRateLimitBurstLimit,
		},
	)

	// Middleware chain: logging -> cors -> api key -> rate limiting
	loggedRouter := middleware.LoggingMiddleware(router)
	corsHandler := c.Handler(loggedRouter)
	apiKeyHandler := middleware.RequireAPIKey(
		cfg.Configuration.APIKey,
		cfg.Configuration.APIKeyRequired,
		[]string{"/", "/health"},
	)(corsHandler)
	handler := limitMiddleware(apiKeyHandler, limiter, cfg)

	log.Infof("Server listening on port %s", cfg.Server.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, handler))
}
