// Package service contains the business logic layer.
//
// Services orchestrate interactions between the session store, the thesis
// backend and domain logic. They are responsible for:
// - Input validation
// - Business rule enforcement
// - Error translation (database and backend errors -> domain errors)
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/DukeRupert/tesis/internal/backend"
	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/DukeRupert/tesis/internal/metrics"
	"github.com/DukeRupert/tesis/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sqlc-dev/pqtype"
)

const (
	// SessionTokenBytes is the number of random bytes for session tokens.
	// The token is hex-encoded to 64 characters for the cookie.
	SessionTokenBytes = 32

	DefaultSessionDuration = 24 * time.Hour
	MinSessionDuration     = 15 * time.Minute
	MaxSessionDuration     = 30 * 24 * time.Hour
)

// SessionStore is the persistence the session service needs.
// *repository.Queries implements it.
type SessionStore interface {
	CreateSession(ctx context.Context, arg repository.CreateSessionParams) (repository.Session, error)
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (repository.Session, error)
	DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
	TouchSession(ctx context.Context, tokenHash string) error
}

// Authenticator exchanges credentials for a backend token.
// *backend.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResponse, error)
}

// SessionService defines the interface for portal session operations.
type SessionService interface {
	// Login authenticates against the backend and creates a new session.
	// Returns the session and raw session token on success.
	// Returns domain.EINVALID for malformed input and domain.EUNAUTHORIZED
	// for rejected credentials.
	Login(ctx context.Context, params domain.LoginParams) (*domain.LoginResult, error)

	// GetByToken returns the session for a raw cookie token.
	// Returns domain.EUNAUTHORIZED if token is invalid or expired.
	GetByToken(ctx context.Context, token string) (*domain.Session, error)

	// Logout invalidates a session by its raw token. Idempotent.
	Logout(ctx context.Context, token string) error

	// DeleteExpiredSessions removes expired sessions and reports how many.
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// SessionServiceConfig holds tunables for the session service.
type SessionServiceConfig struct {
	SessionDuration time.Duration
}

type sessionService struct {
	store    SessionStore
	auth     Authenticator
	sealer   *Sealer
	validate *validator.Validate
	duration time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionService creates a new SessionService instance.
func NewSessionService(store SessionStore, auth Authenticator, sealer *Sealer, cfg SessionServiceConfig, logger *slog.Logger) SessionService {
	return &sessionService{
		store:    store,
		auth:     auth,
		sealer:   sealer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		duration: normalizeSessionDuration(cfg.SessionDuration),
		logger:   logger,
		now:      time.Now,
	}
}

// normalizeSessionDuration clamps d into [MinSessionDuration, MaxSessionDuration].
// Zero means DefaultSessionDuration.
func normalizeSessionDuration(d time.Duration) time.Duration {
	switch {
	case d == 0:
		return DefaultSessionDuration
	case d < MinSessionDuration:
		return MinSessionDuration
	case d > MaxSessionDuration:
		return MaxSessionDuration
	}
	return d
}

// tokenClaims are the claims we read from the backend token. The token is
// not verified here; the backend verifies it on every call.
type tokenClaims struct {
	jwt.RegisteredClaims
	RoleID domain.Role `json:"role_id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
}

func (s *sessionService) Login(ctx context.Context, params domain.LoginParams) (*domain.LoginResult, error) {
	const op = "SessionService.Login"

	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	if err := s.validate.Struct(params); err != nil {
		return nil, domain.Invalid(op, "Enter a valid email and password")
	}

	resp, err := s.auth.Login(ctx, params.Email, params.Password)
	if err != nil {
		if domain.ErrorCode(err) == domain.EUNAUTHORIZED || backend.IsStatus(err, 400) {
			return nil, domain.Unauthorized(op, "Invalid email or password")
		}
		return nil, err
	}

	now := s.now()
	session := &domain.Session{
		UserID:      resp.User.ID.String(),
		Name:        resp.User.Name,
		Email:       resp.User.Email,
		Role:        resp.User.RoleID,
		BearerToken: resp.Token,
		ExpiresAt:   now.Add(s.duration),
		CreatedAt:   now,
		LastSeenAt:  now,
	}
	if session.Email == "" {
		session.Email = params.Email
	}
	if err := s.applyClaims(op, session, now); err != nil {
		return nil, err
	}
	if !session.Role.Valid() {
		return nil, domain.Forbidden(op, "This account has no portal role")
	}

	sealed, err := s.sealer.Seal([]byte(resp.Token))
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to seal backend token")
	}
	profile, err := json.Marshal(resp.User)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to encode profile")
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to generate session token")
	}

	row, err := s.store.CreateSession(ctx, repository.CreateSessionParams{
		TokenHash:   hashSessionToken(token),
		UserID:      session.UserID,
		UserName:    session.Name,
		Email:       session.Email,
		RoleID:      int32(session.Role),
		SealedToken: sealed,
		Profile:     pqtype.NullRawMessage{RawMessage: profile, Valid: true},
		ExpiresAt:   session.ExpiresAt,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to create session")
	}
	session.ID = row.ID

	metrics.SessionsCreated.Inc()
	s.logger.Info("user logged in", "user_id", session.UserID, "role", session.Role.String())

	return &domain.LoginResult{Session: session, Token: token}, nil
}

// applyClaims fills in what the backend token says about the user. Opaque
// (non-JWT) tokens leave the session as the login response described it.
func (s *sessionService) applyClaims(op string, session *domain.Session, now time.Time) error {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(session.BearerToken, &claims); err != nil {
		s.logger.Debug("backend token is not a JWT, using login response", "error", err)
		return nil
	}

	if claims.ExpiresAt != nil {
		if !claims.ExpiresAt.After(now) {
			return domain.Unauthorized(op, "The thesis service issued an expired token")
		}
		if claims.ExpiresAt.Time.Before(session.ExpiresAt) {
			session.ExpiresAt = claims.ExpiresAt.Time
		}
	}
	if session.UserID == "" && claims.Subject != "" {
		session.UserID = claims.Subject
	}
	if !session.Role.Valid() && claims.RoleID.Valid() {
		session.Role = claims.RoleID
	}
	if session.Name == "" {
		session.Name = claims.Name
	}
	return nil
}

func (s *sessionService) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	const op = "SessionService.GetByToken"

	if len(token) != 2*SessionTokenBytes {
		return nil, domain.Unauthorized(op, "Invalid or expired session")
	}
	tokenHash := hashSessionToken(token)

	row, err := s.store.GetSessionByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Unauthorized(op, "Invalid or expired session")
		}
		return nil, domain.Internal(err, op, "Failed to retrieve session")
	}

	bearer, err := s.sealer.Open(row.SealedToken)
	if err != nil {
		// Sealed with a rotated secret; the session cannot act anymore.
		s.logger.Warn("failed to open sealed token", "session_id", row.ID, "error", err)
		return nil, domain.Unauthorized(op, "Invalid or expired session")
	}

	if err := s.store.TouchSession(ctx, tokenHash); err != nil {
		s.logger.Warn("failed to touch session", "session_id", row.ID, "error", err)
	}

	return &domain.Session{
		ID:          row.ID,
		UserID:      row.UserID,
		Name:        row.UserName,
		Email:       row.Email,
		Role:        domain.Role(row.RoleID),
		BearerToken: string(bearer),
		ExpiresAt:   row.ExpiresAt,
		CreatedAt:   row.CreatedAt,
		LastSeenAt:  row.LastSeenAt,
	}, nil
}

func (s *sessionService) Logout(ctx context.Context, token string) error {
	if len(token) != 2*SessionTokenBytes {
		return nil // Invalid token, but logout is idempotent
	}

	if err := s.store.DeleteSessionByTokenHash(ctx, hashSessionToken(token)); err != nil {
		s.logger.Warn("failed to delete session", "error", err)
	}

	s.logger.Debug("session invalidated")
	return nil
}

func (s *sessionService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	const op = "SessionService.DeleteExpiredSessions"

	n, err := s.store.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, domain.Internal(err, op, "Failed to delete expired sessions")
	}
	metrics.SessionsPurged.Add(float64(n))

	s.logger.Info("expired sessions cleaned up", "count", n)
	return n, nil
}

// generateSessionToken returns 32 random bytes hex-encoded.
func generateSessionToken() (string, error) {
	b := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashSessionToken returns the hex SHA-256 of a session token. Only the
// hash is stored.
func hashSessionToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
