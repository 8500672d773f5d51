package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"reco-api-go/config"
	"reco-api-go/logcolors"
	"reco-api-go/middleware"
	"reco-api-go/stats"
)

// admit records the chosen tier, stamps the rate-limit headers, and forwards
// the request. cacheOnly marks requests that may only be served from cache.
func admit(w http.ResponseWriter, r *http.Request, next http.Handler, tier string, limit, remaining int, cacheOnly bool) {
	stats.Get().RecordRateLimit(tier)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Type", tier)

	ctx := context.WithValue(r.Context(), rateLimitTypeKey, tier)
	if cacheOnly {
		ctx = context.WithValue(ctx, cacheOnlyModeKey, true)
	}
	next.ServeHTTP(w, r.WithContext(ctx))
}

// limitMiddleware enforces the two-tier per-IP rate limit. The normal
// tier permits fresh upstream calls; once exhausted, the cached tier
// still admits requests but flags them cache-only. A valid X-API-Key
// bypasses both tiers.
func limitMiddleware(next http.Handler, limiter *middleware.IPRateLimiter, cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("X-API-Key")
		if apiKey != "" && cfg.Configuration.APIKey != "" && apiKey == cfg.Configuration.APIKey {
			w.Header().Set("X-RateLimit-Bypass", "true")
			ctx := context.WithValue(r.Context(), rateLimitTypeKey, "bypass")
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		pair := limiter.GetLimiter(r.RemoteAddr)

		switch {
		case pair.Normal.Allow():
			admit(w, r, next, "normal", limiter.NormalBurst(), pair.NormalTokens(), false)

		case pair.Cached.Allow():
			log.Debugf("%s IP %s exceeded normal tier, using cached tier", logcolors.LogRateLimit, r.RemoteAddr)
			admit(w, r, next, "cached", limiter.CachedBurst(), pair.CachedTokens(), true)

		default:
			stats.Get().RecordRateLimit("exceeded")
			log.Warnf("%s IP %s exceeded both rate limit tiers", logcolors.LogRateLimit, r.RemoteAddr)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.CachedBurst()))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Type", "exceeded")
			w.Header().Set("Retry-After", "1")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "Rate limit exceeded",
				"message": "Too many requests, retry after the indicated delay",
			})
		}
	})
}
