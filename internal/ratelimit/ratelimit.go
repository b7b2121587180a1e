// internal/ratelimit/ratelimit.go
//
// Per-caller token-bucket limiter for the site-admin login endpoint.
//
// Context
// -------
// The lockout state machine caps guesses per account; this limiter caps
// guesses per source IP, so an attacker cannot sweep many tenant sites
// from one box without tripping it.  Buckets refill at 10 attempts per
// 15 minutes with a burst of 10, and the per-IP map is bounded by an
// LRU so a spoofed-source flood cannot grow it without limit.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/latticecms/lattice/internal/cache"
)

const (
	// loginAttempts per loginWindow, per source IP.
	loginAttempts = 10
	loginWindow   = 15 * time.Minute

	// maxBuckets bounds the limiter map.  Evicting an active bucket
	// merely refills it, so a low ceiling is safe.
	maxBuckets = 4096
)

// LoginLimiter hands out one token bucket per caller key.
// Safe for concurrent use.
type LoginLimiter struct {
	mu      sync.Mutex
	buckets *cache.LRU[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
}

// NewLoginLimiter returns a limiter tuned for login traffic.
func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{
		buckets: cache.New[string, *rate.Limiter](maxBuckets),
		limit:   rate.Every(loginWindow / loginAttempts),
		burst:   loginAttempts,
	}
}

// Allow reports whether the caller identified by key (normally the
// client IP) may attempt a login right now.  A denied attempt does not
// consume a token.
func (l *LoginLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.buckets.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.buckets.Add(key, lim)
	}
	return lim.Allow()
}
