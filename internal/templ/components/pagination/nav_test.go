package pagination

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/DukeRupert/tesis/internal/paginate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var labels = Labels{Nav: "Paginación", Previous: "Anterior", Next: "Siguiente", PageOf: "Página 3 de 5"}

func render(t *testing.T, data Data, cfg Config) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Nav(data, cfg, labels).Render(context.Background(), &buf))
	return buf.String()
}

func viewAt(n, page int) paginate.View[int] {
	p := paginate.New(make([]int, n), paginate.Options{Preset: paginate.Preset{ItemsPerPage: 5, MaxPageButtons: 3}})
	p.Paginate(page)
	return p.View()
}

func TestFromView(t *testing.T) {
	d := FromView(viewAt(23, 3))

	assert.Equal(t, 3, d.CurrentPage)
	assert.Equal(t, 5, d.TotalPages)
	assert.Equal(t, 2, d.PrevPage)
	assert.Equal(t, 4, d.NextPage)
	assert.Equal(t, []int{2, 3, 4}, d.Pages)
	assert.Equal(t, 23, d.Total)

	first := FromView(viewAt(23, 1))
	assert.False(t, first.HasPrevious)
	assert.Zero(t, first.PrevPage)
}

func TestPageURL_KeepsQuery(t *testing.T) {
	cfg := Config{BaseURL: "/reviews", Query: url.Values{"q": {"2019"}, "sort": {"date"}, "page": {"9"}}}

	got := PageURL(cfg, 2)

	assert.Equal(t, "/reviews?page=2&q=2019&sort=date", got)
	assert.Equal(t, "9", cfg.Query.Get("page"), "config query is not modified")
}

func TestNav_Middle(t *testing.T) {
	html := render(t, FromView(viewAt(23, 3)), Config{BaseURL: "/reviews"})

	assert.Contains(t, html, `aria-label="Paginación"`)
	assert.Contains(t, html, `Página 3 de 5`)
	assert.Contains(t, html, `<span aria-current="page"`)
	assert.Contains(t, html, `href="/reviews?page=2" rel="prev"`)
	assert.Contains(t, html, `href="/reviews?page=4" rel="next"`)
	assert.Contains(t, html, `data-total-pages="5"`)
	assert.NotContains(t, html, "hx-get")
}

func TestNav_DisablesEnds(t *testing.T) {
	first := render(t, FromView(viewAt(10, 1)), Config{BaseURL: "/logs"})
	assert.Contains(t, first, `<span aria-disabled="true"`)
	assert.NotContains(t, first, `rel="prev"`)
	assert.Contains(t, first, `rel="next"`)

	last := render(t, FromView(viewAt(10, 2)), Config{BaseURL: "/logs"})
	assert.Contains(t, last, `rel="prev"`)
	assert.NotContains(t, last, `rel="next"`)
}

func TestNav_ActiveButtonClassesMerged(t *testing.T) {
	html := render(t, FromView(viewAt(10, 1)), Config{BaseURL: "/logs"})

	i := strings.Index(html, `aria-current="page"`)
	require.Positive(t, i)
	active := html[i:]
	active = active[:strings.Index(active, ">")]

	assert.Contains(t, active, "bg-blue-600")
	assert.NotContains(t, active, "bg-white", "conflicting background is merged away")
}

func TestNav_Htmx(t *testing.T) {
	html := render(t, FromView(viewAt(23, 3)), Config{
		BaseURL:  "/students",
		TargetID: "list-students",
		UseHtmx:  true,
		PushURL:  true,
		Query:    url.Values{"q": {"a&b"}},
	})

	assert.Contains(t, html, `hx-get="/students?page=4&amp;q=a%26b"`)
	assert.Contains(t, html, `hx-target="#list-students"`)
	assert.Contains(t, html, `hx-push-url="true"`)
}

func TestNav_EmptyRendersNothing(t *testing.T) {
	html := render(t, FromView(paginate.New([]int{}, paginate.Options{}).View()), Config{BaseURL: "/logs"})
	assert.Empty(t, html)
}
