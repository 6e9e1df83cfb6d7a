// Package worker runs periodic maintenance tasks in the background.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/DukeRupert/tesis/internal/metrics"
)

// Worker runs each registered task on its own ticker.
type Worker struct {
	tasks  []Task
	config Config
	logger *slog.Logger

	// Synchronization
	wg      sync.WaitGroup
	stopCh  chan struct{}
	stopped sync.Once
}

// New creates a new Worker with the given configuration.
// The worker must be started with Start() and stopped with Stop().
func New(config Config, logger *slog.Logger) (*Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Worker{
		config: config,
		logger: logger,
		stopCh: make(chan struct{}),
	}, nil
}

// Register adds a task to the worker. A task with the same name replaces
// the earlier one. Call this before Start().
func (w *Worker) Register(task Task) {
	for i, t := range w.tasks {
		if t.Name() == task.Name() {
			w.logger.Warn("Replacing existing task", "task", task.Name())
			w.tasks[i] = task
			return
		}
	}
	w.tasks = append(w.tasks, task)
	w.logger.Debug("Registered task", "task", task.Name())
}

// Start launches one goroutine per registered task.
func (w *Worker) Start(ctx context.Context) {
	for _, task := range w.tasks {
		w.wg.Add(1)
		go w.runLoop(ctx, task)
	}

	w.logger.Info("Worker started", "tasks", len(w.tasks), "interval", w.config.Interval)
}

// Stop signals all task loops to stop and waits for them to finish.
// It respects the configured ShutdownTimeout. Stop is safe to call more
// than once.
func (w *Worker) Stop() {
	w.stopped.Do(func() {
		w.logger.Info("Stopping worker...")
		close(w.stopCh)

		done := make(chan struct{})
		go func() {
			w.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			w.logger.Info("Worker stopped gracefully")
		case <-time.After(w.config.ShutdownTimeout):
			w.logger.Warn("Worker shutdown timeout exceeded, some tasks may still be running")
		}
	})
}

// runLoop runs task on every tick until the worker stops, ctx is canceled
// or the task fails permanently.
func (w *Worker) runLoop(ctx context.Context, task Task) {
	defer w.wg.Done()

	logger := w.logger.With("task", task.Name())

	if w.config.RunOnStart {
		if err := w.runTask(ctx, task, logger); IsPermanent(err) {
			return
		}
	}

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			logger.Debug("Task loop stopping")
			return
		case <-ctx.Done():
			logger.Debug("Task loop canceled")
			return
		case <-ticker.C:
			if err := w.runTask(ctx, task, logger); IsPermanent(err) {
				return
			}
		}
	}
}

// runTask executes one run with a timeout and records its outcome.
func (w *Worker) runTask(ctx context.Context, task Task, logger *slog.Logger) error {
	taskCtx, cancel := context.WithTimeout(ctx, w.config.TaskTimeout)
	defer cancel()

	start := time.Now()
	err := task.Run(taskCtx)
	duration := time.Since(start)

	if err != nil {
		metrics.TaskFailed(task.Name(), duration)
		if IsPermanent(err) {
			logger.Error("Task failed permanently, unscheduling", "error", err, "duration", duration)
		} else {
			logger.Error("Task failed", "error", err, "duration", duration)
		}
		return err
	}

	metrics.TaskCompleted(task.Name(), duration)
	logger.Debug("Task completed", "duration", duration)
	return nil
}
