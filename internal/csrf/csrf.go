// Package csrf implements double-submit tokens: a random value is kept in a
// cookie and every unsafe request must echo it back, in the form body or, on
// htmx requests, in a header.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"
)

const (
	CookieName    = "csrf_token"
	FormFieldName = "csrf_token"
	HeaderName    = "X-CSRF-Token" // set by app.js from the csrf-token meta tag

	tokenBytes = 32
	cookieTTL  = time.Hour
)

var safeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// GenerateToken returns a fresh unpadded base64url token.
func GenerateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidateToken compares the two tokens in constant time. Empty tokens never
// match.
func ValidateToken(cookieToken, submitted string) bool {
	return cookieToken != "" && submitted != "" &&
		subtle.ConstantTimeCompare([]byte(cookieToken), []byte(submitted)) == 1
}

// Token returns the request's cookie token, or "".
func Token(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ValidateRequest checks the submitted token against the cookie. The header
// takes precedence over the form field.
func ValidateRequest(r *http.Request) bool {
	submitted := r.Header.Get(HeaderName)
	if submitted == "" {
		submitted = r.FormValue(FormFieldName)
	}
	return ValidateToken(Token(r), submitted)
}

// EnsureToken returns the request's token, issuing a cookie first when there
// is none. Call it before rendering a form.
func EnsureToken(w http.ResponseWriter, r *http.Request, secure bool) (string, error) {
	if token := Token(r); token != "" {
		return token, nil
	}
	token, err := GenerateToken()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cookieTTL.Seconds()),
		HttpOnly: false, // the layout copies it into a meta tag for htmx
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}

// Protect rejects unsafe requests whose token does not match the cookie.
func Protect(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !safeMethods[r.Method] && !ValidateRequest(r) {
				logger.Warn("csrf token rejected", "method", r.Method, "path", r.URL.Path,
					"htmx", r.Header.Get("HX-Request") == "true")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
