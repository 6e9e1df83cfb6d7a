package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func secureResponse(t *testing.T, isSecure bool, method string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewSecurityHeadersMiddleware(isSecure).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "kept")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("list"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, "/reviews", nil))
	return rec
}

func TestSecurityHeaders_Static(t *testing.T) {
	rec := secureResponse(t, true, http.MethodGet)

	want := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"Permissions-Policy":     "geolocation=(), microphone=(), camera=()",
		"Accept-CH":              "Sec-CH-Viewport-Width",
		"Vary":                   "Sec-CH-Viewport-Width",
	}
	for header, value := range want {
		assert.Equal(t, value, rec.Header().Get(header), header)
	}
}

func TestSecurityHeaders_HSTSOnlyWhenSecure(t *testing.T) {
	hsts := secureResponse(t, true, http.MethodGet).Header().Get("Strict-Transport-Security")
	assert.Contains(t, hsts, "max-age=31536000")
	assert.Contains(t, hsts, "includeSubDomains")

	assert.Empty(t, secureResponse(t, false, http.MethodGet).Header().Get("Strict-Transport-Security"))
}

func TestSecurityHeaders_CSP(t *testing.T) {
	csp := secureResponse(t, false, http.MethodGet).Header().Get("Content-Security-Policy")
	require.NotEmpty(t, csp)

	directives := make(map[string]string)
	for _, d := range strings.Split(csp, ";") {
		name, value, _ := strings.Cut(strings.TrimSpace(d), " ")
		directives[name] = value
	}

	assert.Equal(t, "'self'", directives["default-src"])
	assert.Equal(t, "'self' https://unpkg.com", directives["script-src"], "htmx comes from unpkg, app.js from /static")
	assert.NotContains(t, directives["script-src"], "'unsafe-inline'")
	assert.Contains(t, directives["style-src"], "'unsafe-inline'")
	assert.Equal(t, "'none'", directives["frame-ancestors"])
	assert.Equal(t, "'self'", directives["form-action"])
}

func TestSecurityHeaders_PassThrough(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			rec := secureResponse(t, false, method)

			assert.Equal(t, http.StatusAccepted, rec.Code)
			assert.Equal(t, "kept", rec.Header().Get("X-Custom"))
			assert.Equal(t, "list", rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
		})
	}
}
