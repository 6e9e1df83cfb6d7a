package middleware

import (
	"context"
	"html/template"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/DukeRupert/tesis/internal/handler"
	"github.com/DukeRupert/tesis/internal/i18n"
	"golang.org/x/time/rate"
)

// =============================================================================
// Rate Limiter
// =============================================================================

// idleTTL is how long a client's bucket survives without requests.
const idleTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per key (client IP).
type RateLimiter struct {
	limit  rate.Limit
	burst  int
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*rateClient
}

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PerWindow returns the refill rate that allows n requests per window.
func PerWindow(n int, window time.Duration) rate.Limit {
	if n <= 0 || window <= 0 {
		return 0
	}
	return rate.Every(window / time.Duration(n))
}

// NewRateLimiter creates a limiter refilling at limit tokens per second
// with room for burst requests at once.
func NewRateLimiter(limit rate.Limit, burst int, logger *slog.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   limit,
		burst:   burst,
		logger:  logger,
		now:     time.Now,
		clients: make(map[string]*rateClient),
	}
}

func (rl *RateLimiter) client(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[key]
	if !ok {
		c = &rateClient{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// Allow reports whether a request for key may proceed, consuming a token if so.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()
	return rl.client(key, now).AllowN(now, 1)
}

// RetryAfter returns how long key has to wait for its next token.
func (rl *RateLimiter) RetryAfter(key string) time.Duration {
	now := rl.now()
	r := rl.client(key, now).ReserveN(now, 1)
	if !r.OK() {
		// a zero rate never refills
		return idleTTL
	}
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return delay
}

// Prune drops buckets that have been idle longer than ttl and reports how many.
func (rl *RateLimiter) Prune(ttl time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) > ttl {
			delete(rl.clients, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Run prunes idle buckets every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Prune(idleTTL); n > 0 {
				rl.logger.Debug("rate limiter pruned idle clients", "count", n)
			}
		}
	}
}

// =============================================================================
// Rate Limit Middleware
// =============================================================================

// RateLimitMiddleware wraps a rate limiter for use as HTTP middleware.
type RateLimitMiddleware struct {
	limiter *RateLimiter
	logger  *slog.Logger
}

// NewRateLimitMiddleware creates a new rate limit middleware.
func NewRateLimitMiddleware(limiter *RateLimiter, logger *slog.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
	}
}

// Limit rejects clients that exhausted their bucket with 429 and a
// Retry-After header. Browsers get a localized page; JSON and htmx clients
// get the regular error response.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getClientIP(r)
		if m.limiter.Allow(ip) {
			next.ServeHTTP(w, r)
			return
		}

		wait := max(1, int(math.Ceil(m.limiter.RetryAfter(ip).Seconds())))
		w.Header().Set("Retry-After", strconv.Itoa(wait))
		m.logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path, "retry_after_s", wait)

		if isAPIRequest(r) || r.Header.Get("HX-Request") == "true" {
			handler.ErrorResponse(w, r, m.logger, domain.RateLimit("middleware.Limit"))
			return
		}

		l := i18n.FromContext(r.Context())
		lang := "es"
		if l != nil {
			lang = l.Lang
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = rateLimitedPage.Execute(w, map[string]string{
			"Lang":    lang,
			"Title":   l.T("rate_limited_title"),
			"Message": l.T("login_rate_limited"),
		})
	})
}

var rateLimitedPage = template.Must(template.New("429").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</body>
</html>`))

// =============================================================================
// Helpers
// =============================================================================

// getClientIP returns the address a request came from. The first entry of
// X-Forwarded-For wins, then X-Real-IP, then RemoteAddr. Header values that
// do not parse as an address are ignored.
func getClientIP(r *http.Request) string {
	first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	for _, candidate := range []string{first, r.Header.Get("X-Real-IP")} {
		if addr, err := netip.ParseAddr(strings.TrimSpace(candidate)); err == nil {
			return addr.Unmap().String()
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
