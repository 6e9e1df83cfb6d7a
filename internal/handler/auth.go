// Package handler contains HTTP handlers for the thesis portal.
//
// This file implements the login and logout handlers. Credentials are
// checked by the thesis backend; the portal only keeps a session that
// holds the backend token.
package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/DukeRupert/tesis/internal/auth"
	"github.com/DukeRupert/tesis/internal/csrf"
	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/DukeRupert/tesis/internal/i18n"
	"github.com/DukeRupert/tesis/internal/service"
	"github.com/DukeRupert/tesis/internal/session"
)

// AuthHandler handles authentication-related HTTP requests.
//
// Dependencies:
// - sessions: backend login and portal session lifecycle
// - renderer: template rendering
// - logger: structured logging
// - isSecure: whether cookies carry the Secure flag (true in production)
type AuthHandler struct {
	sessions service.SessionService
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

// NewAuthHandler creates a new AuthHandler with the required dependencies.
func NewAuthHandler(
	sessions service.SessionService,
	renderer TemplateRenderer,
	logger *slog.Logger,
	isSecure bool,
) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// =============================================================================
// Template Data Types
// =============================================================================

// AuthPageData contains common data for authentication pages.
type AuthPageData struct {
	CurrentPath string            // Current URL path
	L           *i18n.Localizer   // Translations for the request language
	CSRFToken   string            // CSRF token for form protection
	Form        map[string]string // Form field values for re-populating on error
	Errors      map[string]string // Field-level validation errors
	Flash       *Flash            // Flash message to display
	ReturnTo    string            // URL to redirect to after successful login
}

// =============================================================================
// GET /login - Show Login Form
// =============================================================================

// ShowLogin renders the login form.
//
// Template: auth/login
//
// Query Parameters:
// - return_to (optional): URL to redirect to after successful login
// - logout (optional): If "1", show the signed-out message
//
// A request that already carries a session goes straight to return_to or
// the dashboard.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	returnTo := r.URL.Query().Get("return_to")

	if auth.GetSessionFromRequest(r) != nil {
		http.Redirect(w, r, safeRedirect(returnTo), http.StatusSeeOther)
		return
	}

	l := i18n.FromContext(r.Context())
	var flash *Flash
	if r.URL.Query().Get("logout") == "1" {
		flash = &Flash{Type: "success", Message: l.T("logout_done")}
	}

	h.renderLogin(w, r, http.StatusOK, nil, nil, flash, returnTo)
}

// =============================================================================
// POST /login - Process Login
// =============================================================================

// Login processes the login form submission.
//
// Form Fields:
// - csrf_token (required): must match the CSRF cookie
// - email (required): institutional email address
// - password (required)
// - return_to (optional): URL to redirect to after successful login
//
// Security Notes:
// - Rejected credentials always get the same generic message
// - The password is never re-rendered or logged
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	l := i18n.FromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.logger.Warn("failed to parse login form", "error", err)
		h.renderLogin(w, r, http.StatusBadRequest, nil, nil, &Flash{
			Type:    "error",
			Message: l.T("login_bad_form"),
		}, "")
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")
	returnTo := r.FormValue("return_to")
	formValues := map[string]string{"Email": email}

	if !csrf.ValidateRequest(r) {
		h.logger.Warn("login csrf token rejected")
		h.renderLogin(w, r, http.StatusForbidden, formValues, nil, &Flash{
			Type:    "error",
			Message: l.T("login_csrf"),
		}, returnTo)
		return
	}

	errors := make(map[string]string)
	if email == "" {
		errors["email"] = l.T("login_email_required")
	}
	if password == "" {
		errors["password"] = l.T("login_password_required")
	}
	if len(errors) > 0 {
		if acceptsJSON(r) {
			ValidationErrorResponse(w, r, h.logger, &domain.ValidationError{Op: "AuthHandler.Login", Fields: errors})
			return
		}
		h.renderLogin(w, r, http.StatusUnprocessableEntity, formValues, errors, nil, returnTo)
		return
	}

	result, err := h.sessions.Login(r.Context(), domain.LoginParams{Email: email, Password: password})
	if err != nil {
		switch domain.ErrorCode(err) {
		case domain.EUNAUTHORIZED, domain.EINVALID:
			h.renderLogin(w, r, http.StatusUnauthorized, formValues, nil, &Flash{
				Type:    "error",
				Message: l.T("login_invalid"),
			}, returnTo)
		case domain.ERATELIMIT:
			h.renderLogin(w, r, http.StatusTooManyRequests, formValues, nil, &Flash{
				Type:    "error",
				Message: l.T("login_rate_limited"),
			}, returnTo)
		default:
			h.logger.Error("login failed", "error", err, "code", domain.ErrorCode(err))
			h.renderLogin(w, r, ErrorCodeToHTTPStatus(domain.ErrorCode(err)), formValues, nil, &Flash{
				Type:    "error",
				Message: l.T("login_failed"),
			}, returnTo)
		}
		return
	}

	session.SetCookie(w, result.Token, result.Session.ExpiresAt, h.isSecure)

	h.logger.Info("user logged in",
		"user_id", result.Session.UserID,
		"role", result.Session.Role.String(),
	)

	http.Redirect(w, r, safeRedirect(returnTo), http.StatusSeeOther)
}

// renderLogin renders the login form with the given state.
func (h *AuthHandler) renderLogin(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	formValues map[string]string,
	errors map[string]string,
	flash *Flash,
	returnTo string,
) {
	if formValues == nil {
		formValues = make(map[string]string)
	}
	if errors == nil {
		errors = make(map[string]string)
	}

	token, err := csrf.EnsureToken(w, r, h.isSecure)
	if err != nil {
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	if !isSafeRedirectURL(returnTo) {
		returnTo = ""
	}

	data := AuthPageData{
		CurrentPath: "/login",
		L:           i18n.FromContext(r.Context()),
		CSRFToken:   token,
		Form:        formValues,
		Errors:      errors,
		Flash:       flash,
		ReturnTo:    returnTo,
	}

	h.renderer.RenderHTTPStatus(w, status, "auth/login", data)
}

// =============================================================================
// POST /logout - Process Logout
// =============================================================================

// Logout invalidates the portal session and clears the session cookie.
//
// Notes:
// - This operation is idempotent - calling without a session is fine
// - Always clear the cookie even if database logout fails
// - Always redirect to login (don't show error pages)
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		if err := h.sessions.Logout(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("failed to invalidate session in database", "error", err)
		}
	}

	session.ClearCookie(w, h.isSecure)

	h.logger.Debug("user logged out")

	http.Redirect(w, r, "/login?logout=1", http.StatusSeeOther)
}

// =============================================================================
// Helper Functions
// =============================================================================

// safeRedirect returns returnTo when it is a local path, else /dashboard.
func safeRedirect(returnTo string) string {
	if returnTo != "" && isSafeRedirectURL(returnTo) {
		return returnTo
	}
	return "/dashboard"
}

// isSafeRedirectURL checks if a URL is safe for redirecting.
//
// Examples:
// - "/reviews"            -> true (relative URL)
// - "/reviews?page=2"     -> true (relative URL with query)
// - "//evil.com"          -> false (protocol-relative, could be external)
// - "https://evil.com"    -> false (absolute URL to external domain)
// - "javascript:alert(1)" -> false (javascript URL)
func isSafeRedirectURL(rawURL string) bool {
	// Must start with /
	if !strings.HasPrefix(rawURL, "/") {
		return false
	}

	// Must not start with // or /\ (browsers treat both as protocol-relative)
	if strings.HasPrefix(rawURL, "//") || strings.HasPrefix(rawURL, `/\`) {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	// Must not have a scheme or a host
	return parsed.Scheme == "" && parsed.Host == ""
}

// =============================================================================
// Route Registration Helper
// =============================================================================

// RegisterRoutes registers all auth routes on the provided ServeMux.
//
// Routes registered:
// - GET  /login  -> ShowLogin
// - POST /login  -> Login (wrapped by limit, the per-IP login limiter)
// - POST /logout -> Logout
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /login", h.ShowLogin)
	mux.Handle("POST /login", limit(http.HandlerFunc(h.Login)))
	mux.HandleFunc("POST /logout", h.Logout)
}
