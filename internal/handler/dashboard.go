package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/tesis/internal/auth"
	"github.com/DukeRupert/tesis/internal/i18n"
)

// DashboardHandler renders the landing page after login.
type DashboardHandler struct {
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

func NewDashboardHandler(renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *DashboardHandler {
	return &DashboardHandler{renderer: renderer, logger: logger, isSecure: isSecure}
}

// DashboardData is the dashboard body: one card per list the role may open.
type DashboardData struct {
	Welcome string
	Role    string
	Cards   []NavItem
}

// Show renders the dashboard.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	sess := auth.GetSessionFromRequest(r)
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	l := i18n.FromContext(r.Context())
	data := newPageData(w, r, h.isSecure, l.T("nav_dashboard"), nil)

	// The first nav entry is the dashboard itself.
	cards := data.Nav[1:]
	data.Data = DashboardData{
		Welcome: l.TData("welcome", map[string]any{"Name": sess.DisplayName()}),
		Role:    l.T("role_" + sess.Role.String()),
		Cards:   cards,
	}

	h.renderer.RenderHTTP(w, "dashboard", data)
}

// Root sends visitors to the dashboard, which bounces to /login without a
// session. Unknown paths get a 404.
func (h *DashboardHandler) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundResponse(w, r, h.logger)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
