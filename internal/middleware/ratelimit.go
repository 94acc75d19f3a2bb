package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/duetapp/duet/internal/ctxkeys"
	"github.com/duetapp/duet/internal/metrics"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
)

// Limiter decides whether another request for key fits the budget. When it
// does not, retryAfter says how long the caller should wait.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// RateLimiter tracks request times per key in process memory. It serves
// single-instance deployments and development.
type RateLimiter struct {
	mu          sync.Mutex
	requests    map[string][]time.Time
	limit       int           // Max requests allowed
	window      time.Duration // Time window for rate limiting
	lastCleanup time.Time
	now         func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests:    make(map[string][]time.Time),
		limit:       limit,
		window:      window,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	if now.Sub(rl.lastCleanup) > 2*rl.window {
		rl.cleanup(cutoff)
		rl.lastCleanup = now
	}

	// Remove old requests outside time window
	var valid []time.Time
	for _, reqTime := range rl.requests[key] {
		if reqTime.After(cutoff) {
			valid = append(valid, reqTime)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false, valid[0].Sub(cutoff), nil
	}

	rl.requests[key] = append(valid, now)
	return true, 0, nil
}

// cleanup removes keys with no recent requests
func (rl *RateLimiter) cleanup(cutoff time.Time) {
	for key, requests := range rl.requests {
		if len(requests) == 0 || !requests[len(requests)-1].After(cutoff) {
			delete(rl.requests, key)
		}
	}
}

// RedisLimiter shares the budget across instances with a GCRA limiter.
type RedisLimiter struct {
	limiter *redis_rate.Limiter
	limit   redis_rate.Limit
	prefix  string
}

func NewRedisLimiter(rdb redis.UniversalClient, perMinute int, prefix string) *RedisLimiter {
	return &RedisLimiter{
		limiter: redis_rate.NewLimiter(rdb),
		limit:   redis_rate.PerMinute(perMinute),
		prefix:  prefix,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	res, err := l.limiter.Allow(ctx, l.prefix+key, l.limit)
	if err != nil {
		return false, 0, err
	}
	return res.Allowed > 0, res.RetryAfter, nil
}

// RateLimit throttles per authenticated user, falling back to the client IP.
// Limiter failures let the request through.
func RateLimit(limiter Limiter, m *metrics.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ctxkeys.UserID(r.Context())
			if key == "" {
				key = "ip:" + getClientIP(r)
			}

			allowed, retryAfter, err := limiter.Allow(r.Context(), key)
			if err != nil {
				slog.Warn("rate limiter unavailable, allowing request", "error", err, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				slog.Warn("rate limit exceeded",
					"key", key,
					"path", r.URL.Path,
				)
				m.CounterRateLimited.Inc()
				seconds := int(retryAfter.Round(time.Second) / time.Second)
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				writeJSONError(w, http.StatusTooManyRequests, "too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts real client IP from request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (proxy/load balancer)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// Take first IP in list
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	// Check X-Real-IP header
	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fallback to RemoteAddr
	ip := r.RemoteAddr
	// Remove port if present
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}

	return ip
}
