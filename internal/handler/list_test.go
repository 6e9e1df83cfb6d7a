package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DukeRupert/tesis/internal/auth"
	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/DukeRupert/tesis/internal/paginate"
	"github.com/DukeRupert/tesis/internal/service"
	"github.com/DukeRupert/tesis/internal/viewport"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLister serves a fixed set of reviews; the other lists are empty.
type fakeLister struct {
	reviews []domain.Review
	err     error
}

func (f *fakeLister) ListLogs(ctx context.Context, cred domain.Credentials) ([]domain.LogEntry, error) {
	return nil, nil
}

func (f *fakeLister) ListProfessors(ctx context.Context, cred domain.Credentials) ([]domain.Professor, error) {
	return nil, nil
}

func (f *fakeLister) ListCoordinators(ctx context.Context, cred domain.Credentials) ([]domain.Coordinator, error) {
	return nil, nil
}

func (f *fakeLister) ListReviews(ctx context.Context, cred domain.Credentials) ([]domain.Review, error) {
	return f.reviews, f.err
}

func (f *fakeLister) ListProposals(ctx context.Context, cred domain.Credentials) ([]domain.Proposal, error) {
	return nil, nil
}

func (f *fakeLister) ListSedes(ctx context.Context, cred domain.Credentials) ([]domain.Sede, error) {
	return nil, nil
}

func (f *fakeLister) ListCommissions(ctx context.Context, cred domain.Credentials) ([]domain.Commission, error) {
	return nil, nil
}

func (f *fakeLister) ListStudents(ctx context.Context, cred domain.Credentials) ([]domain.Student, error) {
	return nil, nil
}

// makeReviews returns n reviews with student codes A-01..A-n.
func makeReviews(n int) []domain.Review {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	out := make([]domain.Review, n)
	for i := range out {
		out[i] = domain.Review{
			ID:          int64(i + 1),
			StudentCode: fmt.Sprintf("A-%02d", i+1),
			StudentName: fmt.Sprintf("Student %02d", i+1),
			Title:       "Thesis",
			Status:      domain.ReviewStatusPending,
			SubmittedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

// reviewPresets: narrow 3 per page, wide 5 per page.
var reviewPresets = map[string]paginate.Settings{
	"reviews": {
		Policy: paginate.Policy{
			Threshold: 768,
			Narrow:    paginate.Preset{ItemsPerPage: 3, MaxPageButtons: 5},
			Wide:      paginate.Preset{ItemsPerPage: 5, MaxPageButtons: 10},
		},
		Variant: paginate.VariantB,
	},
}

func newTestListHandler(lister *fakeLister) (*ListHandler, *fakeRenderer) {
	r := &fakeRenderer{}
	lists := service.NewListService(lister, newTestLogger())
	return NewListHandler(lists, reviewPresets, r, newTestLogger(), false), r
}

// listResponse mirrors the JSON body of a list.
type listResponse struct {
	Items       []domain.Review `json:"currentPageItems"`
	CurrentPage int             `json:"currentPage"`
	TotalPages  int             `json:"totalPages"`
	PageRange   []int           `json:"pageRange"`
	Total       int             `json:"total"`
	Notice      string          `json:"notice"`
}

// getReviews issues a JSON request to the reviews list. vwCookie is the
// width remembered from the previous request, 0 for none.
func getReviews(t *testing.T, h *ListHandler, target string, vwCookie int) (*httptest.ResponseRecorder, listResponse) {
	t.Helper()

	req := httptest.NewRequest("GET", target, nil)
	req.Header.Set("Accept", "application/json")
	if vwCookie > 0 {
		req.AddCookie(&http.Cookie{Name: viewport.CookieName, Value: fmt.Sprint(vwCookie)})
	}
	req = req.WithContext(auth.SetSession(req.Context(), &domain.Session{
		ID:          uuid.New(),
		Role:        domain.RoleAdmin,
		BearerToken: "bearer",
	}))

	rec := httptest.NewRecorder()
	h.Routes()["reviews"].ServeHTTP(rec, req)

	var body listResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	}
	return rec, body
}

func TestParseListRequest(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		wantPage int
		hasPage  bool
		params   service.ListParams
		prev     service.ListParams
	}{
		{"no page", "/reviews", 0, false, service.ListParams{}, service.ListParams{}},
		{"page", "/reviews?page=3", 3, true, service.ListParams{}, service.ListParams{}},
		{"garbage page", "/reviews?page=abc", 0, true, service.ListParams{}, service.ListParams{}},
		{
			"query without prev",
			"/reviews?q=+A-1+&sort=date&desc=1",
			0, false,
			service.ListParams{Search: "A-1", Sort: "date", Desc: true},
			service.ListParams{Search: "A-1", Sort: "date", Desc: true},
		},
		{
			"query with prev",
			"/reviews?page=2&q=A-1&prev_q=&prev_sort=name&desc=on",
			2, true,
			service.ListParams{Search: "A-1", Desc: true},
			service.ListParams{Sort: "name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := parseListRequest(httptest.NewRequest("GET", tt.target, nil))
			assert.Equal(t, tt.wantPage, req.page)
			assert.Equal(t, tt.hasPage, req.hasPage)
			assert.Equal(t, tt.params, req.params)
			assert.Equal(t, tt.prev, req.prev)
		})
	}
}

func TestList_FirstPageByDefault(t *testing.T) {
	h, _ := newTestListHandler(&fakeLister{reviews: makeReviews(12)})

	rec, body := getReviews(t, h, "/reviews", 0)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, body.CurrentPage)
	assert.Equal(t, 3, body.TotalPages)
	assert.Equal(t, []int{1, 2, 3}, body.PageRange)
	assert.Equal(t, 12, body.Total)
	require.Len(t, body.Items, 5)
	assert.Equal(t, "A-01", body.Items[0].StudentCode)
}

func TestList_Paginate(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantPage  int
		wantFirst string
	}{
		{"valid page", "/reviews?page=3", 3, "A-11"},
		{"page zero ignored", "/reviews?page=0", 1, "A-01"},
		{"past the end ignored", "/reviews?page=9", 1, "A-01"},
		{"negative ignored", "/reviews?page=-2", 1, "A-01"},
		{"garbage ignored", "/reviews?page=abc", 1, "A-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestListHandler(&fakeLister{reviews: makeReviews(12)})

			_, body := getReviews(t, h, tt.target, 0)

			assert.Equal(t, tt.wantPage, body.CurrentPage)
			require.NotEmpty(t, body.Items)
			assert.Equal(t, tt.wantFirst, body.Items[0].StudentCode)
		})
	}
}

func TestList_ResizeSwitchesPreset(t *testing.T) {
	h, _ := newTestListHandler(&fakeLister{reviews: makeReviews(12)})

	// Was on page 2 of the wide list; the window shrinks below 768.
	rec, body := getReviews(t, h, "/reviews?page=2&vw=500", 1280)

	assert.Equal(t, 4, body.TotalPages)
	assert.Equal(t, 2, body.CurrentPage)
	assert.Len(t, body.Items, 3)

	c := findCookie(rec, viewport.CookieName)
	require.NotNil(t, c)
	assert.Equal(t, "500", c.Value)
}

func TestList_ResizeClampsCurrentPage(t *testing.T) {
	h, _ := newTestListHandler(&fakeLister{reviews: makeReviews(12)})

	// Page 4 exists only with the narrow preset.
	_, body := getReviews(t, h, "/reviews?page=4&vw=1024", 500)

	assert.Equal(t, 3, body.TotalPages)
	assert.Equal(t, 3, body.CurrentPage)
	assert.Len(t, body.Items, 2)
}

func TestList_SameSideResizeKeepsPage(t *testing.T) {
	h, _ := newTestListHandler(&fakeLister{reviews: makeReviews(12)})

	_, body := getReviews(t, h, "/reviews?page=3&vw=1900", 1024)

	assert.Equal(t, 3, body.CurrentPage)
	assert.Equal(t, 3, body.TotalPages)
}

func TestList_QueryChangeResetsToFirstPage(t *testing.T) {
	h, _ := newTestListHandler(&fakeLister{reviews: makeReviews(30)})

	// The user was on page 3 of the unfiltered list and searched "A-1".
	_, body := getReviews(t, h, "/reviews?page=3&prev_q=&q=A-1", 0)

	assert.Equal(t, 1, body.CurrentPage)
	assert.Equal(t, 10, body.Total) // A-10 .. A-19
	assert.Equal(t, 2, body.TotalPages)
}

func TestList_SameQueryKeepsPage(t *testing.T) {
	h, _ := newTestListHandler(&fakeLister{reviews: makeReviews(30)})

	_, body := getReviews(t, h, "/reviews?page=2&q=A-1", 0)

	assert.Equal(t, 2, body.CurrentPage)
	require.NotEmpty(t, body.Items)
	assert.Equal(t, "A-15", body.Items[0].StudentCode)
}

func TestList_SortDescending(t *testing.T) {
	h, _ := newTestListHandler(&fakeLister{reviews: makeReviews(12)})

	_, body := getReviews(t, h, "/reviews?sort=date&desc=1", 0)

	require.NotEmpty(t, body.Items)
	assert.Equal(t, "A-12", body.Items[0].StudentCode)
}

func TestList_EmptyList(t *testing.T) {
	h, _ := newTestListHandler(&fakeLister{reviews: []domain.Review{}})

	rec, body := getReviews(t, h, "/reviews?page=1", 0)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, body.TotalPages)
	assert.Empty(t, body.Items)
	assert.Empty(t, body.PageRange)
}

func TestList_FetchFailureDegradesToEmptyList(t *testing.T) {
	h, _ := newTestListHandler(&fakeLister{err: domain.Unavailable(fmt.Errorf("connection refused"), "test")})

	rec, body := getReviews(t, h, "/reviews", 0)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body.Items)
	assert.Equal(t, 0, body.Total)
	assert.NotEmpty(t, body.Notice)
}

func TestList_BackendRejectsToken(t *testing.T) {
	h, _ := newTestListHandler(&fakeLister{err: domain.Unauthorized("test", "token expired")})

	t.Run("json", func(t *testing.T) {
		rec, _ := getReviews(t, h, "/reviews", 0)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("html redirects to login", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/reviews?page=2", nil)
		req = req.WithContext(auth.SetSession(req.Context(), &domain.Session{ID: uuid.New(), Role: domain.RoleAdmin}))
		rec := httptest.NewRecorder()
		h.Routes()["reviews"].ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/login?return_to="))
	})
}

func TestList_HTMLPage(t *testing.T) {
	h, renderer := newTestListHandler(&fakeLister{reviews: makeReviews(12)})

	req := httptest.NewRequest("GET", "/reviews?page=2&q=A&sort=date", nil)
	req = req.WithContext(auth.SetSession(req.Context(), &domain.Session{ID: uuid.New(), Role: domain.RoleCoordinator}))
	rec := httptest.NewRecorder()
	h.Routes()["reviews"].ServeHTTP(rec, req)

	call := renderer.last(t)
	assert.Equal(t, "lists/reviews", call.name)
	assert.Empty(t, call.block)

	data, ok := call.data.(PageData)
	require.True(t, ok)
	page, ok := data.Data.(ListPage[domain.Review])
	require.True(t, ok)

	assert.Equal(t, 2, page.View.CurrentPage)
	assert.Equal(t, "list-reviews", page.TargetID)
	assert.False(t, page.Narrow)
	assert.Contains(t, string(page.Nav), `aria-current="page"`)
	assert.Contains(t, string(page.Nav), "q=A")
	assert.Contains(t, page.RefreshURL, "page=2")
	assert.NotEmpty(t, data.CSRFToken)
}

func TestList_HtmxGetsFragment(t *testing.T) {
	h, renderer := newTestListHandler(&fakeLister{reviews: makeReviews(12)})

	req := httptest.NewRequest("GET", "/reviews?page=2&vw=400", nil)
	req.Header.Set("HX-Request", "true")
	req = req.WithContext(auth.SetSession(req.Context(), &domain.Session{ID: uuid.New(), Role: domain.RoleAdmin}))
	rec := httptest.NewRecorder()
	h.Routes()["reviews"].ServeHTTP(rec, req)

	call := renderer.last(t)
	assert.Equal(t, "lists/reviews", call.name)
	assert.Equal(t, "list", call.block)

	page := call.data.(PageData).Data.(ListPage[domain.Review])
	assert.True(t, page.Narrow)
	assert.Equal(t, 400, page.Width)
	assert.Equal(t, 3, page.View.ItemsPerPage)
}

func TestList_RegisterRoutesGatesByRole(t *testing.T) {
	h, _ := newTestListHandler(&fakeLister{})

	gated := map[string][]domain.Role{}
	mux := http.NewServeMux()
	h.RegisterRoutes(mux, func(roles ...domain.Role) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gated[r.URL.Path] = roles
				next.ServeHTTP(w, r)
			})
		}
	})

	for _, name := range []string{"logs", "professors", "coordinators", "reviews", "proposals", "sedes", "commissions", "students"} {
		req := httptest.NewRequest("GET", "/"+name, nil)
		req.Header.Set("Accept", "application/json")
		req = req.WithContext(auth.SetSession(req.Context(), &domain.Session{ID: uuid.New(), Role: domain.RoleAdmin}))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, name)
		assert.Equal(t, RolesFor(name), gated["/"+name], name)
		assert.Contains(t, gated["/"+name], domain.RoleAdmin, name)
	}
}
