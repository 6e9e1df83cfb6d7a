package worker

import (
	"context"
	"errors"
)

// Task is a unit of periodic background work. Names must be unique within a
// Worker; they label logs and the tesis_tasks_* metrics.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

type funcTask struct {
	name string
	run  func(ctx context.Context) error
}

func (t funcTask) Name() string                  { return t.name }
func (t funcTask) Run(ctx context.Context) error { return t.run(ctx) }

// TaskFunc turns run into a Task called name.
func TaskFunc(name string, run func(ctx context.Context) error) Task {
	return funcTask{name: name, run: run}
}

// PermanentError marks a failure that running again cannot fix. The worker
// stops scheduling a task once it returns one.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err, or anything it wraps, is a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
