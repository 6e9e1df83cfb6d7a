package metrics

import "time"

// TaskCompleted records a successful task run
func TaskCompleted(task string, duration time.Duration) {
	TasksTotal.WithLabelValues(task, "completed").Inc()
	TaskDuration.WithLabelValues(task).Observe(duration.Seconds())
}

// TaskFailed records a failed task run
func TaskFailed(task string, duration time.Duration) {
	TasksTotal.WithLabelValues(task, "failed").Inc()
	TaskDuration.WithLabelValues(task).Observe(duration.Seconds())
}
