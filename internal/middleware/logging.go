package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DukeRupert/tesis/internal/requestid"
	"github.com/DukeRupert/tesis/internal/viewport"
)

// Paths too noisy to log.
var quietPrefixes = []string{"/health", "/metrics", "/static/"}

// Query parameters whose values never reach the logs. Search terms are
// redacted because users search lists by student name and code.
var redactedParams = map[string]bool{
	"token":        true,
	"access_token": true,
	"password":     true,
	"secret":       true,
	"session":      true,
	"csrf_token":   true,
	"q":            true,
	"prev_q":       true,
}

// RequestLoggingMiddleware writes one log line per request.
type RequestLoggingMiddleware struct {
	logger *slog.Logger
}

func NewRequestLoggingMiddleware(logger *slog.Logger) *RequestLoggingMiddleware {
	return &RequestLoggingMiddleware{logger: logger}
}

// Handler logs method, path, status and timing. List requests also carry
// the requested page and viewport width so preset switches can be traced.
func (m *RequestLoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isQuiet(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		attrs := []any{
			"method", r.Method,
			"path", redactQuery(r.URL.Path, r.URL.RawQuery),
			"status", rec.status,
			"bytes", rec.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", getClientIP(r),
			"user_agent", r.UserAgent(),
		}
		if id := requestid.From(r.Context()); id != "" {
			attrs = append(attrs, "request_id", id)
		}
		if r.Header.Get("HX-Request") == "true" {
			attrs = append(attrs, "htmx", true)
			if target := r.Header.Get("HX-Target"); target != "" {
				attrs = append(attrs, "htmx_target", target)
			}
		}
		if vw, ok := viewport.Parse(r.URL.Query().Get(viewport.ParamName)); ok {
			attrs = append(attrs, "vw", vw)
		}

		switch {
		case rec.status >= 500:
			m.logger.Error("request", attrs...)
		case rec.status == http.StatusTooManyRequests:
			m.logger.Warn("request", attrs...)
		default:
			m.logger.Info("request", attrs...)
		}
	})
}

func isQuiet(path string) bool {
	for _, p := range quietPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// redactQuery returns path with the query re-encoded and sensitive values
// replaced. Keys come out sorted.
func redactQuery(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return path
	}
	for key := range values {
		if redactedParams[strings.ToLower(key)] {
			values[key] = []string{"redacted"}
		}
	}
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}

// statusRecorder captures the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
