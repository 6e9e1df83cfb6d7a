// Package viewport tracks the browser viewport width reported by a client.
//
// Browsers do not send their width on every request, so the width is read
// from, in order: the "vw" query or form value that the resize script adds
// to htmx requests, the Sec-CH-Viewport-Width client hint, and the "vw"
// cookie holding the last width seen.
package viewport

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
)

const (
	// DefaultWidth is assumed when the client has not reported a width.
	DefaultWidth = 1280

	// MaxWidth caps reported widths; anything larger is treated as bogus.
	MaxWidth = 16384

	// ParamName is the query/form parameter carrying the current width.
	ParamName = "vw"

	// HintHeader is the client hint header for the layout viewport width.
	HintHeader = "Sec-CH-Viewport-Width"

	// CookieName stores the last width the client reported.
	CookieName = "vw"

	// CookieMaxAge keeps the width for 30 days.
	CookieMaxAge = 30 * 24 * 60 * 60
)

// =============================================================================
// Tracker
// =============================================================================

// Tracker holds the latest viewport width and notifies listeners each time
// a new width is observed.
type Tracker struct {
	mu        sync.Mutex
	width     int
	nextID    int
	listeners []listener
}

type listener struct {
	id int
	fn func(width int)
}

// NewTracker returns a Tracker that starts at width. Non-positive widths
// start at DefaultWidth.
func NewTracker(width int) *Tracker {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Tracker{width: width}
}

// Width returns the last observed width.
func (t *Tracker) Width() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width
}

// Observe records a resize to width and notifies listeners in the order they
// subscribed. Non-positive widths are ignored.
func (t *Tracker) Observe(width int) {
	if width <= 0 {
		return
	}

	t.mu.Lock()
	t.width = width
	fns := make([]func(int), len(t.listeners))
	for i, l := range t.listeners {
		fns[i] = l.fn
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(width)
	}
}

// Subscribe registers fn for future Observe calls. The returned cancel func
// removes it; calling cancel again does nothing.
func (t *Tracker) Subscribe(fn func(width int)) (cancel func()) {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.listeners = append(t.listeners, listener{id: id, fn: fn})
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, l := range t.listeners {
			if l.id == id {
				t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
				return
			}
		}
	}
}

// Listeners returns the number of active subscriptions.
func (t *Tracker) Listeners() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.listeners)
}

// =============================================================================
// HTTP helpers
// =============================================================================

// FromRequest returns the width the client reports for this request,
// falling back to the remembered width and then DefaultWidth.
func FromRequest(r *http.Request) int {
	if w, ok := Parse(r.FormValue(ParamName)); ok {
		return w
	}
	if w, ok := Parse(r.Header.Get(HintHeader)); ok {
		return w
	}
	return Remembered(r)
}

// Remembered returns the width stored in the cookie by a previous request,
// or DefaultWidth.
func Remembered(r *http.Request) int {
	if c, err := r.Cookie(CookieName); err == nil {
		if w, ok := Parse(c.Value); ok {
			return w
		}
	}
	return DefaultWidth
}

// SetCookie remembers width for the next request.
func SetCookie(w http.ResponseWriter, width int, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    strconv.Itoa(width),
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Parse reads a width in CSS pixels. Client hints may carry a fractional
// value, which is truncated.
func Parse(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	w, err := strconv.Atoi(s)
	if err != nil || w <= 0 || w > MaxWidth {
		return 0, false
	}
	return w, true
}
