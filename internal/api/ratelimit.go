package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/config"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/logger"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/redis"
)

// Limiter decides whether a client may make another request
type Limiter interface {
	Allow(ctx context.Context, client string) (bool, error)
	Window() time.Duration
}

// NewLimiter picks the Redis sliding window when Redis is enabled, the in-process token
// bucket otherwise. Returns nil when rate limiting is disabled.
func NewLimiter(cfg *config.Config, client *redis.Client) Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	if client != nil && client.Enabled() {
		return NewRedisLimiter(redis.NewRateLimiter(client, "estimator"), cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}
	return NewLocalLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
}

// RedisLimiter is shared by all API instances
type RedisLimiter struct {
	limiter *redis.RateLimiter
	limit   int
	window  time.Duration
}

// NewRedisLimiter creates a Redis-backed limiter
func NewRedisLimiter(limiter *redis.RateLimiter, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{limiter: limiter, limit: limit, window: window}
}

// Allow implements Limiter
func (l *RedisLimiter) Allow(ctx context.Context, client string) (bool, error) {
	ok, _, err := l.limiter.Allow(ctx, redis.ClientRateLimit(client, l.limit, l.window))
	return ok, err
}

// Window implements Limiter
func (l *RedisLimiter) Window() time.Duration { return l.window }

// maxTrackedClients triggers pruning of idle local buckets
const maxTrackedClients = 10000

// LocalLimiter keeps one token bucket per client in memory
type LocalLimiter struct {
	mu      sync.Mutex
	clients map[string]*localClient
	limit   rate.Limit
	burst   int
	window  time.Duration
}

type localClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter allows requests per window on average with bursts of the same size
func NewLocalLimiter(requests int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		clients: make(map[string]*localClient),
		limit:   rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
		window:  window,
	}
}

// Allow implements Limiter
func (l *LocalLimiter) Allow(ctx context.Context, client string) (bool, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[client]
	if !ok {
		if len(l.clients) >= maxTrackedClients {
			l.prune(now)
		}
		c = &localClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1), nil
}

// Window implements Limiter
func (l *LocalLimiter) Window() time.Duration { return l.window }

// prune drops buckets idle for longer than a window; they would be full again anyway
func (l *LocalLimiter) prune(now time.Time) {
	for k, c := range l.clients {
		if now.Sub(c.lastSeen) > l.window {
			delete(l.clients, k)
		}
	}
}

// rateLimitMiddleware rejects requests over the limit with 429.
// Limiter failures let the request through.
func rateLimitMiddleware(limiter Limiter, trustProxy bool, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientKey(r, trustProxy)

			allowed, err := limiter.Allow(r.Context(), client)
			if err != nil {
				log.WithError(err).Warn("Rate limiter unavailable, allowing request")
				allowed = true
			}
			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(int(limiter.Window().Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller by remote IP.
// X-Forwarded-For is client-controlled, so its first hop is used only when trustProxy is set.
func clientKey(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
