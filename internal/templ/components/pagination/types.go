// Package pagination provides the shared pagination nav for list pages.
package pagination

import (
	"net/url"
	"strconv"

	"github.com/DukeRupert/tesis/internal/paginate"
)

// Data contains pagination information for display.
type Data struct {
	CurrentPage int
	TotalPages  int
	PerPage     int
	Total       int
	HasPrevious bool
	HasNext     bool
	PrevPage    int
	NextPage    int
	Pages       []int
}

// Empty reports whether there are no records, in which case the list
// renders its empty state instead of a nav.
func (d Data) Empty() bool {
	return d.TotalPages == 0
}

// FromView builds display data from a paginator snapshot.
func FromView[T any](v paginate.View[T]) Data {
	d := Data{
		CurrentPage: v.CurrentPage,
		TotalPages:  v.TotalPages,
		PerPage:     v.ItemsPerPage,
		Total:       v.Total,
		HasPrevious: v.HasPrevious,
		HasNext:     v.HasNext,
		Pages:       v.PageRange,
	}
	if d.HasPrevious {
		d.PrevPage = d.CurrentPage - 1
	}
	if d.HasNext {
		d.NextPage = d.CurrentPage + 1
	}
	return d
}

// Config allows customization of pagination behavior.
type Config struct {
	BaseURL  string     // e.g., "/reviews"
	TargetID string     // htmx target, e.g., "list-reviews"
	UseHtmx  bool       // Enable htmx partial loading
	PushURL  bool       // Update browser URL with hx-push-url
	Query    url.Values // Active search, sort and viewport params kept in every link
}

// Labels are the translated strings the nav shows.
type Labels struct {
	Nav      string // aria-label of the nav
	Previous string
	Next     string
	PageOf   string // e.g. "Página 3 de 5"
}

// PageURL returns the link for page, keeping the active query.
func PageURL(cfg Config, page int) string {
	q := url.Values{}
	for k, vs := range cfg.Query {
		if k == "page" {
			continue
		}
		q[k] = append([]string(nil), vs...)
	}
	q.Set("page", strconv.Itoa(page))
	return cfg.BaseURL + "?" + q.Encode()
}
