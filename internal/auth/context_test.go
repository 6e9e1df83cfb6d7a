package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSessionContext(t *testing.T) {
	assert.Nil(t, GetSession(context.Background()))

	s := &domain.Session{UserID: "7", Role: domain.RoleReviewer}
	r := httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(SetSession(r.Context(), s))

	assert.Same(t, s, GetSessionFromRequest(r))
}

func TestHasRole(t *testing.T) {
	ctx := SetSession(context.Background(), &domain.Session{Role: domain.RoleProfessor})

	assert.True(t, HasRole(ctx, domain.RoleAdmin, domain.RoleProfessor))
	assert.False(t, HasRole(ctx, domain.RoleAdmin))
	assert.False(t, HasRole(ctx))
	assert.False(t, HasRole(context.Background(), domain.RoleProfessor))
}
