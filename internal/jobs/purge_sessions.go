// Package jobs contains the portal's periodic background tasks.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/DukeRupert/tesis/internal/worker"
)

// SessionPurger removes expired sessions. service.SessionService implements it.
type SessionPurger interface {
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// PurgeSessionsTask deletes expired portal sessions.
type PurgeSessionsTask struct {
	sessions SessionPurger
	logger   *slog.Logger
}

// NewPurgeSessionsTask creates the task.
func NewPurgeSessionsTask(sessions SessionPurger, logger *slog.Logger) *PurgeSessionsTask {
	return &PurgeSessionsTask{sessions: sessions, logger: logger}
}

// Name implements worker.Task.
func (t *PurgeSessionsTask) Name() string {
	return "purge_expired_sessions"
}

// Run implements worker.Task. Temporary failures are retried on the next
// tick; any other failure ends the task.
func (t *PurgeSessionsTask) Run(ctx context.Context) error {
	n, err := t.sessions.DeleteExpiredSessions(ctx)
	if err != nil {
		err = fmt.Errorf("purge expired sessions: %w", err)
		if !domain.Temporary(err) {
			return worker.NewPermanentError(err)
		}
		return err
	}

	if n > 0 {
		t.logger.Info("purged expired sessions", "count", n)
	}
	return nil
}
