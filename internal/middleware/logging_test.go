package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DukeRupert/tesis/internal/requestid"
	"github.com/stretchr/testify/assert"
)

func serveLogged(t *testing.T, req *http.Request, h http.HandlerFunc) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	rec := httptest.NewRecorder()
	Stack(RequestID, NewRequestLoggingMiddleware(logger).Handler)(h).ServeHTTP(rec, req)
	return rec, buf.String()
}

func TestRequestLogging_LogsRequestLine(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/reviews?page=2&vw=480", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.195, 10.0.0.1")
	req.Header.Set("User-Agent", "thesis-test/1.0")
	req.Header.Set(requestid.Header, "req-abc-123")

	_, out := serveLogged(t, req, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})

	for _, want := range []string{
		"level=INFO",
		"method=GET",
		`path="/reviews?page=2&vw=480"`,
		"status=200",
		"bytes=5",
		"duration_ms=",
		"ip=203.0.113.195",
		"user_agent=thesis-test/1.0",
		"request_id=req-abc-123",
		"vw=480",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRequestLogging_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "level=INFO"},
		{http.StatusNotFound, "level=INFO"},
		{http.StatusTooManyRequests, "level=WARN"},
		{http.StatusBadGateway, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			_, out := serveLogged(t, req, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			assert.Contains(t, out, tt.level)
		})
	}
}

func TestRequestLogging_RedactsSensitiveParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/students?q=Garc%C3%ADa&prev_q=Ana&sort=name&csrf_token=abc123secret&token=t0k", nil)

	_, out := serveLogged(t, req, func(w http.ResponseWriter, r *http.Request) {})

	for _, secret := range []string{"Garc", "Ana", "abc123secret", "t0k"} {
		assert.NotContains(t, out, secret)
	}
	assert.Contains(t, out, "q=redacted")
	assert.Contains(t, out, "sort=name")
}

func TestRequestLogging_MarksHtmxRequests(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/sedes?page=3", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "list-sedes")

	_, out := serveLogged(t, req, func(w http.ResponseWriter, r *http.Request) {})

	assert.Contains(t, out, "htmx=true")
	assert.Contains(t, out, "htmx_target=list-sedes")
}

func TestRequestLogging_SkipsQuietPaths(t *testing.T) {
	for _, path := range []string{"/health", "/metrics", "/static/js/app.js"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			_, out := serveLogged(t, req, func(w http.ResponseWriter, r *http.Request) {})
			assert.Empty(t, out)
		})
	}
}

func TestRequestLogging_PassesResponseThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)

	rec, out := serveLogged(t, req, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "value")
		w.WriteHeader(http.StatusSeeOther)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("body"))
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "value", rec.Header().Get("X-Custom"))
	assert.Equal(t, "body", rec.Body.String())
	assert.Contains(t, out, "status=303")
}

func TestRedactQuery(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		query string
		want  string
	}{
		{"no query", "/reviews", "", "/reviews"},
		{"plain", "/reviews", "page=2&sort=date", "/reviews?page=2&sort=date"},
		{"case insensitive key", "/login", "Password=x", "/login?Password=redacted"},
		{"malformed", "/reviews", "page=%zz", "/reviews"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, redactQuery(tt.path, tt.query))
		})
	}
}
