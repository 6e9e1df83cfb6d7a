package handler

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/DukeRupert/tesis/internal/auth"
	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/DukeRupert/tesis/internal/i18n"
	"github.com/DukeRupert/tesis/internal/metrics"
	"github.com/DukeRupert/tesis/internal/paginate"
	"github.com/DukeRupert/tesis/internal/service"
	"github.com/DukeRupert/tesis/internal/session"
	"github.com/DukeRupert/tesis/internal/templ/components/pagination"
	"github.com/DukeRupert/tesis/internal/viewport"
	"github.com/a-h/templ"
)

// TemplateRenderer is the interface for rendering HTML templates.
// This interface allows for mocking in tests.
type TemplateRenderer interface {
	RenderHTTP(w http.ResponseWriter, name string, data any)
	RenderHTTPStatus(w http.ResponseWriter, status int, name string, data any)
	RenderBlockHTTP(w http.ResponseWriter, name, block string, data any)
}

// ListHandler serves the paginated record lists.
//
// The server keeps no per-user list state. Each request carries the state
// the user was looking at (page, query and the width remembered in the vw
// cookie) plus the new event (a changed query or a new width). The handler
// replays the former on a fresh paginator and then applies the latter, so
// page resets and clamps behave as they would on a long-lived list.
type ListHandler struct {
	lists    *service.ListService
	presets  map[string]paginate.Settings
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

// NewListHandler creates a new ListHandler. presets holds the settings of
// each list by name; lists without an entry use paginate.DefaultPreset.
func NewListHandler(
	lists *service.ListService,
	presets map[string]paginate.Settings,
	renderer TemplateRenderer,
	logger *slog.Logger,
	isSecure bool,
) *ListHandler {
	return &ListHandler{
		lists:    lists,
		presets:  presets,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

func (h *ListHandler) settings(name string) paginate.Settings {
	if s, ok := h.presets[name]; ok {
		return s
	}
	return paginate.Settings{
		Policy:  paginate.Policy{Narrow: paginate.DefaultPreset, Wide: paginate.DefaultPreset},
		Variant: paginate.VariantB,
	}
}

// =============================================================================
// Request parsing
// =============================================================================

// listRequest is the replayed state plus the new event of one request.
type listRequest struct {
	params    service.ListParams // query to apply now
	prev      service.ListParams // query the page number refers to
	page      int
	hasPage   bool
	prevWidth int
	width     int
}

// parseListRequest reads:
//   - page: the page the user was on or clicked. Missing means "stay on the
//     first page"; an unparsable value is kept as 0, which the paginator
//     ignores.
//   - q, sort, desc: the query to show.
//   - prev_q, prev_sort, prev_desc: the query the page belongs to, sent by
//     the search form. Without them the page belongs to the current query.
func parseListRequest(r *http.Request) listRequest {
	q := r.URL.Query()
	req := listRequest{
		params:    paramsFrom(q, ""),
		prevWidth: viewport.Remembered(r),
		width:     viewport.FromRequest(r),
	}

	req.prev = req.params
	if q.Has("prev_q") || q.Has("prev_sort") || q.Has("prev_desc") {
		req.prev = paramsFrom(q, "prev_")
	}

	if q.Has("page") {
		req.hasPage = true
		if page, err := strconv.Atoi(strings.TrimSpace(q.Get("page"))); err == nil {
			req.page = page
		}
	}
	return req
}

func paramsFrom(q url.Values, prefix string) service.ListParams {
	return service.ListParams{
		Search: strings.TrimSpace(q.Get(prefix + "q")),
		Sort:   q.Get(prefix + "sort"),
		Desc:   parseFlag(q.Get(prefix + "desc")),
	}
}

// parseFlag accepts checkbox "on" as well as strconv.ParseBool values.
func parseFlag(s string) bool {
	if s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// =============================================================================
// Page data
// =============================================================================

// SortOption is one entry of the sort select.
type SortOption struct {
	Value    string
	Label    string
	Selected bool
}

// ListPage is the data a list template renders.
type ListPage[T any] struct {
	Name     string
	Path     string
	TargetID string
	View     paginate.View[T]
	Nav      template.HTML
	Count    string
	Params   service.ListParams
	Sorts    []SortOption
	Notice   string
	Width    int
	Narrow   bool
	// RefreshURL reloads the current page; the resize script adds vw to it.
	RefreshURL string
}

// listJSON is the JSON form of a list page.
type listJSON[T any] struct {
	paginate.View[T]
	Notice string `json:"notice,omitempty"`
}

// listDef describes one list: where its records come from and how a user
// query turns into a paginate.Query.
type listDef[T any] struct {
	name  string
	fetch func(ctx context.Context, sess *domain.Session) service.Result[T]
	query func(p service.ListParams) paginate.Query[T]
	sorts []string
}

// serveList returns the handler for one list.
func serveList[T any](h *ListHandler, def listDef[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := parseListRequest(r)
		settings := h.settings(def.name)

		res := def.fetch(r.Context(), auth.GetSessionFromRequest(r))
		if domain.ErrorCode(res.Err) == domain.EUNAUTHORIZED {
			h.sessionExpired(w, r)
			return
		}

		list := paginate.NewList(res.Items, settings.Options(req.prevWidth))
		tracker := viewport.NewTracker(req.prevWidth)
		release := list.Bind(settings.Policy, tracker)
		defer release()

		// Replay what the user was looking at.
		list.SetQuery(def.query(req.prev))
		if req.hasPage && !list.Paginate(req.page) && req.page != list.Paginator().CurrentPage() {
			metrics.PageRequestsIgnored.WithLabelValues(def.name).Inc()
			h.logger.Debug("page request ignored",
				"list", def.name,
				"page", req.page,
				"total_pages", list.Paginator().TotalPages(),
			)
		}

		// Apply the new event.
		list.SetQuery(def.query(req.params))
		before := list.Paginator().Preset()
		tracker.Observe(req.width)
		if list.Paginator().Preset() != before {
			metrics.PresetSwitches.WithLabelValues(def.name, presetName(settings.Policy, req.width)).Inc()
		}

		view := list.View()
		viewport.SetCookie(w, req.width, h.isSecure)

		if acceptsJSON(r) {
			metrics.ListRendersTotal.WithLabelValues(def.name, "json").Inc()
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(listJSON[T]{View: view, Notice: res.Notice}); err != nil {
				h.logger.Error("failed to encode list", "list", def.name, "error", err)
			}
			return
		}

		l := i18n.FromContext(r.Context())
		page := ListPage[T]{
			Name:     def.name,
			Path:     r.URL.Path,
			TargetID: "list-" + def.name,
			View:     view,
			Count:    l.TPlural("list_records", view.Total),
			Params:   req.params,
			Sorts:    sortOptions(l, def.sorts, req.params.Sort),
			Notice:   res.Notice,
			Width:    req.width,
			Narrow:   settings.Policy.IsNarrow(req.width),
		}

		cfg := pagination.Config{
			BaseURL:  page.Path,
			TargetID: page.TargetID,
			UseHtmx:  true,
			PushURL:  true,
			Query:    activeQuery(req.params),
		}
		page.RefreshURL = pagination.PageURL(cfg, max(view.CurrentPage, 1))

		nav, err := templ.ToGoHTML(r.Context(), pagination.Nav(pagination.FromView(view), cfg, pagination.Labels{
			Nav:      l.T("pagination_label"),
			Previous: l.T("pagination_previous"),
			Next:     l.T("pagination_next"),
			PageOf:   l.TData("pagination_page_of", map[string]any{"Current": view.CurrentPage, "Total": view.TotalPages}),
		}))
		if err != nil {
			InternalErrorResponse(w, r, h.logger, err)
			return
		}
		page.Nav = nav

		data := newPageData(w, r, h.isSecure, l.T("nav_"+def.name), page)
		if isHtmx(r) {
			metrics.ListRendersTotal.WithLabelValues(def.name, "fragment").Inc()
			h.renderer.RenderBlockHTTP(w, "lists/"+def.name, "list", data)
			return
		}
		metrics.ListRendersTotal.WithLabelValues(def.name, "page").Inc()
		h.renderer.RenderHTTP(w, "lists/"+def.name, data)
	}
}

// sessionExpired handles a backend that no longer accepts the session's
// token. The portal session is useless from here on, so its cookie goes.
func (h *ListHandler) sessionExpired(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w, h.isSecure)

	loginURL := "/login?return_to=" + url.QueryEscape(r.URL.RequestURI())
	switch {
	case acceptsJSON(r):
		UnauthorizedResponse(w, r, h.logger)
	case isHtmx(r):
		w.Header().Set("HX-Redirect", loginURL)
		w.WriteHeader(http.StatusUnauthorized)
	default:
		http.Redirect(w, r, loginURL, http.StatusSeeOther)
	}
}

func presetName(p paginate.Policy, width int) string {
	if p.IsNarrow(width) {
		return "narrow"
	}
	return "wide"
}

// activeQuery is the query kept in page links.
func activeQuery(p service.ListParams) url.Values {
	q := url.Values{}
	if p.Search != "" {
		q.Set("q", p.Search)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
		if p.Desc {
			q.Set("desc", "1")
		}
	}
	return q
}

func sortOptions(l *i18n.Localizer, sorts []string, selected string) []SortOption {
	opts := make([]SortOption, 0, len(sorts)+1)
	opts = append(opts, SortOption{Value: "", Label: l.T("list_sort_none"), Selected: selected == ""})
	for _, s := range sorts {
		opts = append(opts, SortOption{Value: s, Label: l.T("list_sort_" + s), Selected: s == selected})
	}
	return opts
}

// =============================================================================
// Route Registration
// =============================================================================

// Routes returns the list handlers by name.
func (h *ListHandler) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"logs": serveList(h, listDef[domain.LogEntry]{
			name:  "logs",
			fetch: h.lists.Logs,
			query: service.LogQuery,
			sorts: []string{service.SortDate, service.SortName},
		}),
		"professors": serveList(h, listDef[domain.Professor]{
			name:  "professors",
			fetch: h.lists.Professors,
			query: service.ProfessorQuery,
			sorts: []string{service.SortName},
		}),
		"coordinators": serveList(h, listDef[domain.Coordinator]{
			name:  "coordinators",
			fetch: h.lists.Coordinators,
			query: service.CoordinatorQuery,
			sorts: []string{service.SortName},
		}),
		"reviews": serveList(h, listDef[domain.Review]{
			name:  "reviews",
			fetch: h.lists.Reviews,
			query: service.ReviewQuery,
			sorts: []string{service.SortDate, service.SortStudent, service.SortStatus},
		}),
		"proposals": serveList(h, listDef[domain.Proposal]{
			name:  "proposals",
			fetch: h.lists.Proposals,
			query: service.ProposalQuery,
			sorts: []string{service.SortDate, service.SortStudent, service.SortStatus},
		}),
		"sedes": serveList(h, listDef[domain.Sede]{
			name:  "sedes",
			fetch: h.lists.Sedes,
			query: service.SedeQuery,
			sorts: []string{service.SortName},
		}),
		"commissions": serveList(h, listDef[domain.Commission]{
			name:  "commissions",
			fetch: h.lists.Commissions,
			query: service.CommissionQuery,
			sorts: []string{service.SortDate, service.SortName},
		}),
		"students": serveList(h, listDef[domain.Student]{
			name:  "students",
			fetch: h.lists.Students,
			query: service.StudentQuery,
			sorts: []string{service.SortCode, service.SortName},
		}),
	}
}

// RegisterRoutes registers every list as GET /<name>, wrapped by gate with
// the roles allowed to open it.
//
// Usage in main.go:
//
//	listHandler.RegisterRoutes(mux, func(roles ...domain.Role) func(http.Handler) http.Handler {
//		return middleware.Stack(authMw.RequireSession, authMw.RequireRole(roles...))
//	})
func (h *ListHandler) RegisterRoutes(mux *http.ServeMux, gate func(roles ...domain.Role) func(http.Handler) http.Handler) {
	routes := h.Routes()
	for _, lr := range listRoles {
		mux.Handle("GET /"+lr.name, gate(lr.roles...)(routes[lr.name]))
	}
}
