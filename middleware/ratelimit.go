package middleware

import (
	"math"
	"sync"

	"golang.org/x/time/rate"
)

// Tier describes one rate-limit tier: refill rate plus burst.
type Tier struct {
	Rate  rate.Limit
	Burst int
}

// LimiterPair carries both tiers for a single client IP. The normal
// tier admits fresh provider calls; once it is drained the cached
// tier still admits requests that can be answered from the analysis
// cache alone.
type LimiterPair struct {
	Normal *rate.Limiter
	Cached *rate.Limiter
}

// NormalTokens returns the whole tokens left in the normal tier,
// reported to callers via X-RateLimit-Remaining.
func (lp *LimiterPair) NormalTokens() int {
	return int(math.Floor(lp.Normal.Tokens()))
}

// CachedTokens returns the whole tokens left in the cached tier.
func (lp *LimiterPair) CachedTokens() int {
	return int(math.Floor(lp.Cached.Tokens()))
}

// IPRateLimiter hands out a LimiterPair per client IP, created lazily
// on first sight of the address.
type IPRateLimiter struct {
	mu     sync.RWMutex
	pairs  map[string]*LimiterPair
	normal Tier
	cached Tier
}

func NewIPRateLimiter(normal, cached Tier) *IPRateLimiter {
	return &IPRateLimiter{
		pairs:  make(map[string]*LimiterPair),
		normal: normal,
		cached: cached,
	}
}

// NormalBurst returns the normal tier burst, reported via
// X-RateLimit-Limit.
func (i *IPRateLimiter) NormalBurst() int {
	return i.normal.Burst
}

// CachedBurst returns the cached tier burst.
func (i *IPRateLimiter) CachedBurst() int {
	return i.cached.Burst
}

// GetLimiter returns the pair for ip, creating it on first use.
func (i *IPRateLimiter) GetLimiter(ip string) *LimiterPair {
	i.mu.RLock()
	pair, ok := i.pairs[ip]
	i.mu.RUnlock()
	if ok {
		return pair
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if pair, ok := i.pairs[ip]; ok {
		return pair
	}
	pair = &LimiterPair{
		Normal: rate.NewLimiter(i.normal.Rate, i.normal.Burst),
		Cached: rate.NewLimiter(i.cached.Rate, i.cached.Burst),
	}
	i.pairs[ip] = pair
	return pair
}
