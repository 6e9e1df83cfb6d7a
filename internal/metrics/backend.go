package metrics

import (
	"strconv"
	"time"
)

// BackendCall records one call to the thesis backend. A zero status means
// the request never got a response.
func BackendCall(resource string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	BackendRequestsTotal.WithLabelValues(resource, label).Inc()
	BackendRequestDuration.WithLabelValues(resource).Observe(duration.Seconds())
}
