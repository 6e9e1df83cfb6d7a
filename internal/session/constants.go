// Package session provides shared session cookie helpers used by both
// the handler and middleware packages.
package session

import (
	"net/http"
	"time"
)

const (
	// CookieName is the name of the cookie that stores the session token.
	CookieName = "tesis_session"

	// CookiePath ensures the cookie is sent with all requests.
	CookiePath = "/"
)

// SetCookie sets the session cookie, expiring with the session.
func SetCookie(w http.ResponseWriter, token string, expiresAt time.Time, isSecure bool) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     CookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(w http.ResponseWriter, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     CookiePath,
		MaxAge:   -1, // Delete immediately
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
