// Package ratelimit provides per-client token bucket rate limiting.
package ratelimit

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pendergraft/solverify/internal/middleware/realip"
)

// Config holds the configuration for rate limiting
type Config struct {
	// Enabled enables rate limiting
	Enabled bool
	// RequestsPerMin is the number of requests allowed per minute per client
	RequestsPerMin int
	// BurstSize is the maximum burst size
	BurstSize int
	// CleanupMinutes is how long an idle client's bucket survives
	CleanupMinutes int
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter hands out one token bucket per client IP and evicts idle buckets.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	maxIdle time.Duration
	done    chan struct{}
}

// New creates a Limiter. A background sweeper evicts buckets idle for longer
// than CleanupMinutes; call Stop to shut it down.
func New(cfg Config) *Limiter {
	maxIdle := time.Duration(cfg.CleanupMinutes) * time.Minute
	if maxIdle <= 0 {
		maxIdle = 10 * time.Minute
	}

	l := &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(float64(cfg.RequestsPerMin) / 60.0),
		burst:   cfg.BurstSize,
		maxIdle: maxIdle,
		done:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Stop terminates the eviction sweeper.
func (l *Limiter) Stop() {
	close(l.done)
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.maxIdle)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-l.done:
			return
		}
	}
}

func (l *Limiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-l.maxIdle)
	for ip, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, ip)
		}
	}
}

// allow reports whether the client may proceed, creating its bucket on first
// contact.
func (l *Limiter) allow(ip string) bool {
	l.mu.Lock()
	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	l.mu.Unlock()

	return b.lim.Allow()
}

// Liveness probes are never throttled.
var exemptPaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/readyz":  true,
}

// Middleware returns the throttling HTTP middleware for this Limiter.
func (l *Limiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exemptPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			if !l.allow(realip.GetClientIP(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{
						"code":    "RATE_LIMIT_EXCEEDED",
						"message": "Too many requests. Please try again later.",
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Middleware builds a Limiter from cfg and returns its middleware. When
// disabled the middleware is a no-op and no sweeper is started. The sweeper of
// an enabled limiter runs for the lifetime of the process.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return New(cfg).Middleware()
}
