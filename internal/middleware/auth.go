// Package middleware contains HTTP middleware for the thesis portal.
//
// Middleware functions follow the standard Go pattern of wrapping http.Handler.
// They are designed to be composed using a middleware stack approach.
package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/DukeRupert/tesis/internal/auth"
	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/DukeRupert/tesis/internal/handler"
	"github.com/DukeRupert/tesis/internal/service"
	"github.com/DukeRupert/tesis/internal/session"
)

// =============================================================================
// Auth Middleware Configuration
// =============================================================================

// AuthMiddleware provides authentication middleware functionality.
//
// Create one instance and use its methods as middleware.
type AuthMiddleware struct {
	sessions service.SessionService
	logger   *slog.Logger
	isSecure bool // Whether to set Secure flag on cookies (true in production)
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(sessions service.SessionService, logger *slog.Logger, isSecure bool) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		logger:   logger,
		isSecure: isSecure,
	}
}

// =============================================================================
// WithSession Middleware
// =============================================================================

// WithSession loads the portal session from the session cookie.
//
// The request always continues; handlers read the session with
// auth.GetSession. An unknown or expired token clears the cookie.
func (m *AuthMiddleware) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := m.sessions.GetByToken(r.Context(), cookie.Value)
		if err != nil {
			if domain.ErrorCode(err) != domain.EUNAUTHORIZED {
				m.logger.Error("session lookup failed", "error", err)
			}
			session.ClearCookie(w, m.isSecure)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.SetSession(r.Context(), sess)))
	})
}

// =============================================================================
// RequireSession Middleware
// =============================================================================

// RequireSession requires an authenticated session.
//
// Must run after WithSession. HTML requests are redirected to /login with a
// return_to parameter; API requests get a 401.
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.GetSessionFromRequest(r) == nil {
			m.unauthenticated(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole restricts a route to the given backend roles.
//
//	mux.Handle("GET /sedes", stack(authMw.RequireRole(domain.RoleAdmin)(sedesHandler)))
func (m *AuthMiddleware) RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := auth.GetSessionFromRequest(r)
			if sess == nil {
				m.logger.Error("RequireRole called without session in context")
				m.unauthenticated(w, r)
				return
			}

			if !auth.HasRole(r.Context(), roles...) {
				m.logger.Info("role not allowed",
					"role", sess.Role.String(),
					"path", r.URL.Path,
					"user_id", sess.UserID,
				)
				handler.ForbiddenResponse(w, r, m.logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *AuthMiddleware) unauthenticated(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		handler.UnauthorizedResponse(w, r, m.logger)
		return
	}

	returnTo := r.URL.Path
	if r.URL.RawQuery != "" {
		returnTo += "?" + r.URL.RawQuery
	}
	target := "/login?return_to=" + url.QueryEscape(returnTo)

	// htmx follows HX-Redirect with a full navigation instead of swapping the login page in
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// =============================================================================
// Request Helpers
// =============================================================================

// isAPIRequest determines if the request expects a JSON response.
func isAPIRequest(r *http.Request) bool {
	// htmx requests want HTML fragments
	if r.Header.Get("HX-Request") == "true" {
		return false
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// =============================================================================
// Middleware Stack Helpers
// =============================================================================

// Stack composes multiple middleware functions into a single middleware.
//
// The first middleware is the outermost (runs first on request, last on response).
//
//	stack := Stack(loggingMw, authMw.WithSession, authMw.RequireSession)
//	mux.Handle("GET /dashboard", stack(dashboardHandler))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

var (
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).WithSession
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).RequireSession
)
