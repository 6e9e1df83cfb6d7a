package service

import (
	"context"
	"log/slog"

	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/microcosm-cc/bluemonday"
)

// Lister fetches the record lists from the thesis backend.
// *backend.Client implements it.
type Lister interface {
	ListLogs(ctx context.Context, cred domain.Credentials) ([]domain.LogEntry, error)
	ListProfessors(ctx context.Context, cred domain.Credentials) ([]domain.Professor, error)
	ListCoordinators(ctx context.Context, cred domain.Credentials) ([]domain.Coordinator, error)
	ListReviews(ctx context.Context, cred domain.Credentials) ([]domain.Review, error)
	ListProposals(ctx context.Context, cred domain.Credentials) ([]domain.Proposal, error)
	ListSedes(ctx context.Context, cred domain.Credentials) ([]domain.Sede, error)
	ListCommissions(ctx context.Context, cred domain.Credentials) ([]domain.Commission, error)
	ListStudents(ctx context.Context, cred domain.Credentials) ([]domain.Student, error)
}

// Result is a fetched list. A failed fetch is not fatal to the page: Items
// is empty, Notice carries a message for the user and Err the cause.
type Result[T any] struct {
	Items  []T
	Notice string
	Err    error
}

// Failed reports whether the fetch failed.
func (r Result[T]) Failed() bool {
	return r.Err != nil
}

// ListService fetches lists on behalf of a session.
type ListService struct {
	lister   Lister
	comments *bluemonday.Policy
	logger   *slog.Logger
}

// NewListService creates a new ListService.
func NewListService(lister Lister, logger *slog.Logger) *ListService {
	return &ListService{
		lister:   lister,
		comments: bluemonday.UGCPolicy(),
		logger:   logger,
	}
}

// fetch runs one backend call and degrades a failure to an empty list.
func fetch[T any](ctx context.Context, s *ListService, resource string, sess *domain.Session,
	call func(context.Context, domain.Credentials) ([]T, error)) Result[T] {
	if sess == nil {
		err := domain.Unauthorized("ListService."+resource, "Your session has expired. Please log in again.")
		return Result[T]{Items: []T{}, Notice: domain.ErrorMessage(err), Err: err}
	}

	items, err := call(ctx, sess.Credentials())
	if err != nil {
		s.logger.Warn("list fetch failed",
			"resource", resource,
			"user_id", sess.UserID,
			"code", domain.ErrorCode(err),
			"error", err,
		)
		return Result[T]{Items: []T{}, Notice: domain.ErrorMessage(err), Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return Result[T]{Items: items}
}

func (s *ListService) Logs(ctx context.Context, sess *domain.Session) Result[domain.LogEntry] {
	return fetch(ctx, s, "logs", sess, s.lister.ListLogs)
}

func (s *ListService) Professors(ctx context.Context, sess *domain.Session) Result[domain.Professor] {
	return fetch(ctx, s, "professors", sess, s.lister.ListProfessors)
}

func (s *ListService) Coordinators(ctx context.Context, sess *domain.Session) Result[domain.Coordinator] {
	return fetch(ctx, s, "coordinators", sess, s.lister.ListCoordinators)
}

// Reviews fetches reviews and sanitizes comment bodies, which may carry
// HTML from the backend's editor.
func (s *ListService) Reviews(ctx context.Context, sess *domain.Session) Result[domain.Review] {
	res := fetch(ctx, s, "reviews", sess, s.lister.ListReviews)
	reviews := make([]domain.Review, len(res.Items))
	for i, r := range res.Items {
		comments := make([]domain.ReviewComment, len(r.Comments))
		for j, c := range r.Comments {
			c.Body = s.comments.Sanitize(c.Body)
			comments[j] = c
		}
		r.Comments = comments
		reviews[i] = r
	}
	res.Items = reviews
	return res
}

func (s *ListService) Proposals(ctx context.Context, sess *domain.Session) Result[domain.Proposal] {
	return fetch(ctx, s, "proposals", sess, s.lister.ListProposals)
}

func (s *ListService) Sedes(ctx context.Context, sess *domain.Session) Result[domain.Sede] {
	return fetch(ctx, s, "sedes", sess, s.lister.ListSedes)
}

func (s *ListService) Commissions(ctx context.Context, sess *domain.Session) Result[domain.Commission] {
	return fetch(ctx, s, "commissions", sess, s.lister.ListCommissions)
}

func (s *ListService) Students(ctx context.Context, sess *domain.Session) Result[domain.Student] {
	return fetch(ctx, s, "students", sess, s.lister.ListStudents)
}
