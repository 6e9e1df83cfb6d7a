package worker

import (
	"fmt"
	"time"
)

// Config controls how often tasks run and how long they may take.
type Config struct {
	Interval        time.Duration // between runs of each task
	TaskTimeout     time.Duration // per run; must not exceed Interval
	ShutdownTimeout time.Duration // how long Stop waits for running tasks
	RunOnStart      bool          // run every task once before the first tick
}

// DefaultConfig suits the session purge: hourly, one minute per run.
func DefaultConfig() Config {
	return Config{
		Interval:        time.Hour,
		TaskTimeout:     time.Minute,
		ShutdownTimeout: 30 * time.Second,
		RunOnStart:      true,
	}
}

func (c Config) Validate() error {
	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"interval", c.Interval},
		{"task timeout", c.TaskTimeout},
		{"shutdown timeout", c.ShutdownTimeout},
	} {
		if d.value < time.Second {
			return fmt.Errorf("worker: %s must be at least 1s, got %v", d.name, d.value)
		}
	}
	if c.TaskTimeout > c.Interval {
		return fmt.Errorf("worker: task timeout %v exceeds interval %v", c.TaskTimeout, c.Interval)
	}
	return nil
}
