package stats

import (
	"sync/atomic"
	"time"
)

// Stats holds all server statistics with atomic counters
type Stats struct {
	// Server info
	StartTime time.Time

	// Request counters
	TotalRequests    atomic.Int64
	AnalysisRequests atomic.Int64
	PlaylistRequests atomic.Int64
	SearchRequests   atomic.Int64
	AuthRequests     atomic.Int64
	HealthRequests   atomic.Int64
	OtherRequests    atomic.Int64

	// Cache performance
	CacheHits   atomic.Int64
	CacheMisses atomic.Int64

	// Rate limiting
	RateLimitNormal   atomic.Int64 // Requests served under normal rate limit
	RateLimitCached   atomic.Int64 // Requests served under cached-only tier
	RateLimitExceeded atomic.Int64 // Requests rejected (429)

	// Upstream failures by provider
	OpenRouterErrors atomic.Int64
	SpotifyErrors    atomic.Int64

	// Response status codes
	Status2xx atomic.Int64
	Status4xx atomic.Int64
	Status5xx atomic.Int64

	// Response time tracking (in microseconds for precision)
	totalResponseTime atomic.Int64
	responseCount     atomic.Int64
	minResponseTime   atomic.Int64
	maxResponseTime   atomic.Int64
}

// Global stats instance
var global = newStats()

func newStats() *Stats {
	s := &Stats{StartTime: time.Now()}
	// Initialize min to a high value
	s.minResponseTime.Store(int64(^uint64(0) >> 1)) // Max int64
	return s
}

// Get returns the global stats instance
func Get() *Stats {
	return global
}

// RecordRequest records a request to a specific endpoint
func (s *Stats) RecordRequest(endpoint string) {
	s.TotalRequests.Add(1)
	switch endpoint {
	case "/openrouter/text", "/openrouter/visual":
		s.AnalysisRequests.Add(1)
	case "/openrouter/playlist":
		s.PlaylistRequests.Add(1)
	case "/spotify/search":
		s.SearchRequests.Add(1)
	case "/spotify/auth":
		s.AuthRequests.Add(1)
	case "/health":
		s.HealthRequests.Add(1)
	default:
		s.OtherRequests.Add(1)
	}
}

// RecordCacheHit records a cache hit
func (s *Stats) RecordCacheHit() {
	s.CacheHits.Add(1)
}

// RecordCacheMiss records a cache miss
func (s *Stats) RecordCacheMiss() {
	s.CacheMisses.Add(1)
}

// RecordRateLimit records rate limit tier usage
func (s *Stats) RecordRateLimit(tier string) {
	switch tier {
	case "normal":
		s.RateLimitNormal.Add(1)
	case "cached":
		s.RateLimitCached.Add(1)
	case "exceeded":
		s.RateLimitExceeded.Add(1)
	}
}

// RecordUpstreamError records a failed call to an upstream provider
func (s *Stats) RecordUpstreamError(provider string) {
	switch provider {
	case "openrouter":
		s.OpenRouterErrors.Add(1)
	case "spotify":
		s.SpotifyErrors.Add(1)
	}
}

// RecordStatusCode records a response status code
func (s *Stats) RecordStatusCode(code int) {
	switch {
	case code >= 200 && code < 300:
		s.Status2xx.Add(1)
	case code >= 400 && code < 500:
		s.Status4xx.Add(1)
	case code >= 500:
		s.Status5xx.Add(1)
	}
}

// RecordResponseTime records a response duration
func (s *Stats) RecordResponseTime(d time.Duration) {
	micros := d.Microseconds()
	s.totalResponseTime.Add(micros)
	s.responseCount.Add(1)

	for {
		current := s.minResponseTime.Load()
		if micros >= current || s.minResponseTime.CompareAndSwap(current, micros) {
			break
		}
	}
	for {
		current := s.maxResponseTime.Load()
		if micros <= current || s.maxResponseTime.CompareAndSwap(current, micros) {
			break
		}
	}
}

// CacheHitRate returns the cache hit rate as a percentage
func (s *Stats) CacheHitRate() float64 {
	hits := s.CacheHits.Load()
	misses := s.CacheMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Snapshot returns a map view of all counters for the /stats endpoint
func (s *Stats) Snapshot() map[string]interface{} {
	uptime := time.Since(s.StartTime)

	avgMicros := int64(0)
	count := s.responseCount.Load()
	if count > 0 {
		avgMicros = s.totalResponseTime.Load() / count
	}

	minMicros := s.minResponseTime.Load()
	if count == 0 {
		minMicros = 0
	}

	return map[string]interface{}{
		"uptime_seconds": int64(uptime.Seconds()),
		"uptime_human":   uptime.Round(time.Second).String(),
		"requests": map[string]interface{}{
			"total":    s.TotalRequests.Load(),
			"analysis": s.AnalysisRequests.Load(),
			"playlist": s.PlaylistRequests.Load(),
			"search":   s.SearchRequests.Load(),
			"auth":     s.AuthRequests.Load(),
			"health":   s.HealthRequests.Load(),
			"other":    s.OtherRequests.Load(),
		},
		"cache": map[string]interface{}{
			"hits":             s.CacheHits.Load(),
			"misses":           s.CacheMisses.Load(),
			"hit_rate_percent": s.CacheHitRate(),
		},
		"rate_limiting": map[string]interface{}{
			"normal":   s.RateLimitNormal.Load(),
			"cached":   s.RateLimitCached.Load(),
			"exceeded": s.RateLimitExceeded.Load(),
		},
		"upstream_errors": map[string]interface{}{
			"openrouter": s.OpenRouterErrors.Load(),
			"spotify":    s.SpotifyErrors.Load(),
		},
		"status_codes": map[string]interface{}{
			"2xx": s.Status2xx.Load(),
			"4xx": s.Status4xx.Load(),
			"5xx": s.Status5xx.Load(),
		},
		"response_times_us": map[string]interface{}{
			"avg": avgMicros,
			"min": minMicros,
			"max": s.maxResponseTime.Load(),
		},
	}
}
