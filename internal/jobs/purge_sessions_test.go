package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/DukeRupert/tesis/internal/worker"
	"github.com/stretchr/testify/assert"
)

type fakePurger struct {
	n   int64
	err error
}

func (f fakePurger) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	return f.n, f.err
}

func TestPurgeSessionsTask_Run(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name          string
		purger        fakePurger
		wantErr       bool
		wantPermanent bool
	}{
		{"nothing to purge", fakePurger{}, false, false},
		{"purged", fakePurger{n: 12}, false, false},
		{"database hiccup is retried", fakePurger{err: domain.Internal(errors.New("conn reset"), "test", "db")}, true, false},
		{"plain errors count as internal", fakePurger{err: errors.New("conn reset")}, true, false},
		{"backend outage is retried", fakePurger{err: domain.Unavailable(errors.New("dial"), "test")}, true, false},
		{"other codes stop the task", fakePurger{err: domain.Forbidden("test", "no")}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := NewPurgeSessionsTask(tt.purger, logger)
			var _ worker.Task = task

			err := task.Run(context.Background())
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.wantPermanent, worker.IsPermanent(err))
		})
	}
}
