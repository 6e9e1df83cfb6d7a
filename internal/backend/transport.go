package backend

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/tesis/internal/requestid"
)

// loggingTransport logs every outbound call and forwards the inbound
// request id so backend logs can be correlated with ours.
type loggingTransport struct {
	inner  http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	id := requestid.From(req.Context())
	if id == "" {
		id = requestid.New()
	}
	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())
	req.Header.Set(requestid.Header, id)

	resp, err := t.inner.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		t.logger.Error("backend request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration_ms", duration.Milliseconds(),
			"request_id", id,
			"error", err,
		)
		return nil, err
	}

	t.logger.Debug("backend request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
		"request_id", id,
	)
	return resp, nil
}
