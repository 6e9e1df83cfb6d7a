// Package auth carries the portal session through request contexts. Both
// middleware and handlers import it.
package auth

import (
	"context"
	"net/http"

	"github.com/DukeRupert/tesis/internal/domain"
)

type sessionKey struct{}

// SetSession returns a copy of ctx carrying s.
func SetSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// GetSession returns the session stored in ctx, or nil for anonymous
// requests.
func GetSession(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionKey{}).(*domain.Session)
	return s
}

func GetSessionFromRequest(r *http.Request) *domain.Session {
	return GetSession(r.Context())
}

// HasRole reports whether ctx carries a session whose role is one of roles.
func HasRole(ctx context.Context, roles ...domain.Role) bool {
	s := GetSession(ctx)
	return s != nil && s.Role.In(roles...)
}
