package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session represents an authenticated portal session.
//
// Sessions are stored in the database with a hashed token. The raw token is
// only given to the client once (at login). BearerToken is the backend token
// the session acts with; it is stored sealed and only opened in memory.
type Session struct {
	ID          uuid.UUID
	UserID      string
	Name        string
	Email       string
	Role        Role
	BearerToken string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	LastSeenAt  time.Time
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// DisplayName returns the user's name or email if name is empty.
func (s *Session) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Email
}

// Credentials returns the bearer credentials backend calls are made with.
func (s *Session) Credentials() Credentials {
	return Credentials{Token: s.BearerToken}
}

// Credentials is the explicit session context handed to every backend call.
type Credentials struct {
	Token string
}

// Empty reports whether there is no token to send.
func (c Credentials) Empty() bool {
	return c.Token == ""
}

// LoginParams contains the parameters of a login form submission.
type LoginParams struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=1,max=128"`
}

// LoginResult contains the result of a successful login.
type LoginResult struct {
	Session *Session
	Token   string // Raw session token (not hashed) - only returned once
}
