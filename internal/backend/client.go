// Package backend is a thin REST client for the thesis backend.
//
// The client never stores a token. Every authenticated call takes the
// caller's domain.Credentials explicitly.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/DukeRupert/tesis/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout applies when Config.Timeout is zero.
	DefaultTimeout = 10 * time.Second

	// maxBodySize caps how much of a response is read.
	maxBodySize = 5 * 1024 * 1024
)

// Resource paths of the list endpoints.
const (
	ResourceLogs         = "logs"
	ResourceProfessors   = "professors"
	ResourceCoordinators = "coordinators"
	ResourceReviews      = "reviews"
	ResourceProposals    = "proposals"
	ResourceSedes        = "sedes"
	ResourceCommissions  = "commissions"
	ResourceStudents     = "students"
)

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RPS limits outbound calls per second across the process. Zero means
	// no limit.
	RPS   float64
	Burst int
	// Transport is used under the logging transport; nil means
	// http.DefaultTransport.
	Transport http.RoundTripper
}

// Client calls the thesis backend.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Client for cfg.BaseURL.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	inner := cfg.Transport
	if inner == nil {
		inner = http.DefaultTransport
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: &loggingTransport{inner: inner, logger: logger},
		},
		limiter: limiter,
		logger:  logger,
	}, nil
}

// LoginUser is the user block of a login response.
type LoginUser struct {
	ID     json.Number `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	RoleID domain.Role `json:"role_id"`
}

// LoginResponse is the body of a successful POST /auth/login.
type LoginResponse struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

// Login exchanges email and password for a backend bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	const op = "backend.login"

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to encode login request")
	}

	var out LoginResponse
	if err := c.do(ctx, op, "auth", http.MethodPost, "/auth/login", domain.Credentials{}, body, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, domain.Errorf(domain.EINTERNAL, op, "login response carried no token")
	}
	return &out, nil
}

func (c *Client) ListLogs(ctx context.Context, cred domain.Credentials) ([]domain.LogEntry, error) {
	return getList[domain.LogEntry](ctx, c, cred, ResourceLogs)
}

func (c *Client) ListProfessors(ctx context.Context, cred domain.Credentials) ([]domain.Professor, error) {
	return getList[domain.Professor](ctx, c, cred, ResourceProfessors)
}

func (c *Client) ListCoordinators(ctx context.Context, cred domain.Credentials) ([]domain.Coordinator, error) {
	return getList[domain.Coordinator](ctx, c, cred, ResourceCoordinators)
}

func (c *Client) ListReviews(ctx context.Context, cred domain.Credentials) ([]domain.Review, error) {
	return getList[domain.Review](ctx, c, cred, ResourceReviews)
}

func (c *Client) ListProposals(ctx context.Context, cred domain.Credentials) ([]domain.Proposal, error) {
	return getList[domain.Proposal](ctx, c, cred, ResourceProposals)
}

func (c *Client) ListSedes(ctx context.Context, cred domain.Credentials) ([]domain.Sede, error) {
	return getList[domain.Sede](ctx, c, cred, ResourceSedes)
}

func (c *Client) ListCommissions(ctx context.Context, cred domain.Credentials) ([]domain.Commission, error) {
	return getList[domain.Commission](ctx, c, cred, ResourceCommissions)
}

func (c *Client) ListStudents(ctx context.Context, cred domain.Credentials) ([]domain.Student, error) {
	return getList[domain.Student](ctx, c, cred, ResourceStudents)
}

// getList fetches GET /<resource>. The backend answers either with a bare
// JSON array or with {"data": [...]}.
func getList[T any](ctx context.Context, c *Client, cred domain.Credentials, resource string) ([]T, error) {
	op := "backend.list_" + resource
	if cred.Empty() {
		return nil, domain.Unauthorized(op, "Your session has expired. Please log in again.")
	}

	var raw json.RawMessage
	if err := c.do(ctx, op, resource, http.MethodGet, "/"+resource, cred, nil, &raw); err != nil {
		return nil, err
	}

	items, err := decodeList[T](raw)
	if err != nil {
		return nil, domain.Internal(err, op, "Unexpected response from the thesis service")
	}
	return items, nil
}

func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}

	var items []T
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
	} else {
		var envelope struct {
			Data []T `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, err
		}
		items = envelope.Data
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// do sends one request and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, op, resource, method, relPath string, cred domain.Credentials, body []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.RateLimit(op)
	}

	u := *c.base
	u.Path = path.Join(c.base.Path, relPath)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return domain.Internal(err, op, "Failed to build backend request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !cred.Empty() {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendCall(resource, 0, time.Since(start))
		return domain.Unavailable(err, op)
	}
	defer resp.Body.Close()
	metrics.BackendCall(resource, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return domain.Unavailable(err, op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.Internal(err, op, "Unexpected response from the thesis service")
	}
	return nil
}

// StatusError is the underlying error of a non-2xx backend response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Body)
}

// statusError maps a non-2xx response onto the domain error taxonomy.
func statusError(op string, status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	message := payload.Message
	if message == "" {
		message = payload.Error
	}

	snippet := string(body)
	if len(snippet) > 512 {
		snippet = snippet[:512]
	}
	cause := &StatusError{StatusCode: status, Body: snippet}

	var code string
	switch status {
	case http.StatusUnauthorized:
		code = domain.EUNAUTHORIZED
		if message == "" {
			message = "Your session has expired. Please log in again."
		}
	case http.StatusForbidden:
		code = domain.EFORBIDDEN
		if message == "" {
			message = "You do not have permission to view this list."
		}
	case http.StatusNotFound:
		code = domain.ENOTFOUND
		if message == "" {
			message = "The requested list does not exist."
		}
	case http.StatusTooManyRequests:
		code = domain.ERATELIMIT
		if message == "" {
			message = "Too many requests. Please try again later."
		}
	default:
		code = domain.EINTERNAL
		message = "The thesis service returned an error."
	}
	return domain.Wrap(cause, code, op, message)
}

// IsStatus reports whether err came from a backend response with status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == status
}
