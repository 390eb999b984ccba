package httpmiddleware

import (
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the per-client request limiter.
type RateLimitConfig struct {
	// Max is how many requests a single client may make per Window.
	Max int
	// Window is the length of the sliding window.
	Window time.Duration
	// KeyFunc derives the client key from a request. Nil means keying by
	// client IP, honoring X-Forwarded-For and X-Real-IP.
	KeyFunc func(*http.Request) string
	// Skip exempts matching requests from the limit entirely. The server
	// uses it for health probes, which fire far more often than any
	// human client.
	Skip func(*http.Request) bool
}

// counter holds one client's request counts for the current window and the
// one before it. The limiter weighs the previous window by its remaining
// overlap, which smooths the boundary without storing per-request
// timestamps.
type counter struct {
	windowStart time.Time
	count       float64
	prevCount   float64
}

type limiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	clients map[string]*counter
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	return &limiter{cfg: cfg, clients: make(map[string]*counter)}
}

// take records one request for key and reports whether it fit in the
// limit, along with the remaining budget and when the window resets.
func (l *limiter) take(key string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, found := l.clients[key]
	if !found {
		c = &counter{windowStart: now.Truncate(l.cfg.Window)}
		l.clients[key] = c
	}

	// Roll the window forward. After a gap of two or more windows the
	// previous count no longer overlaps anything.
	if gap := now.Sub(c.windowStart); gap >= l.cfg.Window {
		if gap >= 2*l.cfg.Window {
			c.prevCount = 0
		} else {
			c.prevCount = c.count
		}
		c.count = 0
		c.windowStart = now.Truncate(l.cfg.Window)
	}

	overlap := 1 - now.Sub(c.windowStart).Seconds()/l.cfg.Window.Seconds()
	if overlap < 0 {
		overlap = 0
	}
	weighted := c.prevCount*overlap + c.count
	resetAt = c.windowStart.Add(l.cfg.Window)

	if weighted >= float64(l.cfg.Max) {
		return 0, resetAt, false
	}

	c.count++
	remaining = int(float64(l.cfg.Max) - weighted - 1)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, resetAt, true
}

// evict drops clients idle for two full windows.
func (l *limiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, c := range l.clients {
		if now.Sub(c.windowStart) >= 2*l.cfg.Window {
			delete(l.clients, key)
		}
	}
}

// RateLimit returns a sliding-window rate limit middleware. Rejected
// requests get 429 with the API's JSON error envelope; every response
// carries X-RateLimit-Limit, X-RateLimit-Remaining, and X-RateLimit-Reset.
//
// Stale client entries are never evicted. Use RateLimitWithCleanup on a
// long-running server.
func RateLimit(cfg RateLimitConfig) Middleware {
	return newLimiter(cfg).middleware()
}

// RateLimitWithCleanup is RateLimit plus a background goroutine that evicts
// idle clients every two windows until ctx is cancelled.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := newLimiter(cfg)
	go func() {
		ticker := time.NewTicker(2 * l.cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.evict(now)
			}
		}
	}()
	return l.middleware()
}

func (l *limiter) middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.cfg.Skip != nil && l.cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			remaining, resetAt, ok := l.take(l.cfg.KeyFunc(r), time.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !ok {
				retryAfter := math.Ceil(time.Until(resetAt).Seconds())
				if retryAfter < 0 {
					retryAfter = 0
				}
				h.Set("Retry-After", strconv.Itoa(int(retryAfter)))
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"code":    http.StatusTooManyRequests,
					"message": "rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP is the default key: the first X-Forwarded-For hop, then
// X-Real-IP, then the connection's remote address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
