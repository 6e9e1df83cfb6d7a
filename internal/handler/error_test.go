package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EFORBIDDEN, http.StatusForbidden},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EUNAVAILABLE, http.StatusBadGateway},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
		{"something_else", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCodeToHTTPStatus(tt.code))
		})
	}
}

// Internal details (ops, wrapped causes) must never reach the client,
// whatever form the response takes.
func TestErrorResponse_HidesInternals(t *testing.T) {
	errs := map[string]error{
		"wrapped internal": domain.Internal(
			errors.New(`pq: relation "sessions" does not exist`),
			"SessionRepository.GetByTokenHash", "Database query failed"),
		"raw error": errors.New(`FATAL: password authentication failed for user "postgres"`),
		"unavailable": domain.Unavailable(
			errors.New("dial tcp 10.0.0.4:8080: connect: connection refused"), "backend.list_reviews"),
	}
	accepts := map[string]func(*http.Request){
		"html": func(r *http.Request) { r.Header.Set("Accept", "text/html") },
		"json": func(r *http.Request) { r.Header.Set("Accept", "application/json") },
		"htmx": func(r *http.Request) { r.Header.Set("HX-Request", "true") },
	}

	for errName, err := range errs {
		for kind, prepare := range accepts {
			t.Run(errName+"/"+kind, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/reviews", nil)
				prepare(req)
				rec := httptest.NewRecorder()

				ErrorResponse(rec, req, newTestLogger(), err)

				out := rec.Body.String() + rec.Header().Get("HX-Trigger")
				for _, leak := range []string{"pq:", "SessionRepository", "FATAL", "postgres", "10.0.0.4", "backend.list_reviews"} {
					assert.NotContains(t, out, leak)
				}
				assert.GreaterOrEqual(t, rec.Code, 500)
			})
		}
	}
}

func TestErrorResponse_JSONEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/sedes", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	ErrorResponse(rec, req, newTestLogger(), domain.RateLimit("backend.list_sedes"))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got JSONError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.ERATELIMIT, got.Error.Code)
	assert.Contains(t, got.Error.Message, "Too many requests")
	assert.Nil(t, got.Error.Fields)
}

func TestErrorResponse_HtmxRaisesEvent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/students?page=2", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	ForbiddenResponse(rec, req, newTestLogger())

	require.Equal(t, http.StatusForbidden, rec.Code)

	var trigger map[string]ErrorBody
	require.NoError(t, json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &trigger))
	assert.Equal(t, domain.EFORBIDDEN, trigger[ErrorEvent].Code)
	assert.NotEmpty(t, trigger[ErrorEvent].Message)
}

func TestValidationErrorResponse(t *testing.T) {
	ve := domain.NewValidationError("SessionService.Login", "password", "Password is required")

	t.Run("html", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		rec := httptest.NewRecorder()

		ValidationErrorResponse(rec, req, newTestLogger(), ve)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "check your input")
		assert.NotContains(t, rec.Body.String(), "SessionService")
	})

	t.Run("json lists fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()

		ValidationErrorResponse(rec, req, newTestLogger(), ve)

		var got JSONError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, domain.EINVALID, got.Error.Code)
		assert.Equal(t, map[string]string{"password": "Password is required"}, got.Error.Fields)
	})

	t.Run("other errors fall through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		rec := httptest.NewRecorder()

		ValidationErrorResponse(rec, req, newTestLogger(), domain.Unauthorized("op", "nope"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAcceptsJSON(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    bool
	}{
		{"browser", map[string]string{"Accept": "text/html,application/xhtml+xml"}, false},
		{"api", map[string]string{"Accept": "application/json"}, true},
		{"json body", map[string]string{"Content-Type": "application/json"}, true},
		{"htmx wins", map[string]string{"Accept": "application/json", "HX-Request": "true"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/reviews", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, acceptsJSON(req))
		})
	}
}
