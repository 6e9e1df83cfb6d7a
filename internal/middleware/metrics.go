package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net"
	"net/http"
	"net/netip"
)

const metricsRealm = `Basic realm="tesis metrics"`

// MetricsAuthMiddleware guards /metrics. With credentials configured it
// requires basic auth; without them only loopback scrapers get through.
type MetricsAuthMiddleware struct {
	username [sha256.Size]byte
	password [sha256.Size]byte
	hasCreds bool
}

func NewMetricsAuthMiddleware(username, password string) *MetricsAuthMiddleware {
	return &MetricsAuthMiddleware{
		username: sha256.Sum256([]byte(username)),
		password: sha256.Sum256([]byte(password)),
		hasCreds: username != "" || password != "",
	}
}

func (m *MetricsAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.allowed(r) {
			if m.hasCreds {
				w.Header().Set("WWW-Authenticate", metricsRealm)
			}
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *MetricsAuthMiddleware) allowed(r *http.Request) bool {
	if !m.hasCreds {
		return fromLoopback(r)
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	// Digests have equal length, so the comparison stays constant-time.
	u := sha256.Sum256([]byte(user))
	p := sha256.Sum256([]byte(pass))
	userOK := subtle.ConstantTimeCompare(u[:], m.username[:])
	passOK := subtle.ConstantTimeCompare(p[:], m.password[:])
	return userOK&passOK == 1
}

// fromLoopback looks at the socket address only; forwarding headers are
// client-controlled.
func fromLoopback(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	addr, err := netip.ParseAddr(host)
	return err == nil && addr.IsLoopback()
}
