package middleware

import (
	"net/http"

	"github.com/DukeRupert/tesis/internal/requestid"
)

// maxRequestIDLength bounds ids accepted from upstream proxies.
const maxRequestIDLength = 128

// RequestID assigns every request an id, reusing a sane inbound X-Request-Id.
// The id is echoed on the response and forwarded on backend calls.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestid.Header)
		if id == "" || len(id) > maxRequestIDLength {
			id = requestid.New()
		}

		w.Header().Set(requestid.Header, id)
		next.ServeHTTP(w, r.WithContext(requestid.With(r.Context(), id)))
	})
}
