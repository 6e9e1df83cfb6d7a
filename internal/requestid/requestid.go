// Package requestid carries the id of the inbound request through the
// context so that outbound backend calls and log lines can be correlated.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the header the id travels in, both inbound and outbound.
const Header = "X-Request-Id"

type ctxKey struct{}

// New returns a fresh request id.
func New() string {
	return uuid.NewString()
}

// With stores id in ctx.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From returns the id stored in ctx, or "" if there is none.
func From(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
