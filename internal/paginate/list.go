package paginate

import (
	"sort"
	"strings"
)

// Query filters and orders a sequence before it is paginated.
//
// Search is matched with Match; an empty Search or a nil Match keeps every
// item. Less orders the result (stable); a nil Less keeps the source order.
// Sort names the ordering so that two queries can be compared by Key.
// Normalize must fold Search the same way Match does; nil means lowercasing.
type Query[T any] struct {
	Search    string
	Match     func(item T, search string) bool
	Normalize func(search string) string
	Sort      string
	Less      func(a, b T) bool
	Desc      bool
}

// Key identifies the query for change detection. Two queries with the same
// key produce the same result set from the same source.
func (q Query[T]) Key() string {
	dir := "asc"
	if q.Desc {
		dir = "desc"
	}
	search := strings.TrimSpace(q.Search)
	if q.Normalize != nil {
		search = q.Normalize(search)
	} else {
		search = strings.ToLower(search)
	}
	return search + "|" + q.Sort + "|" + dir
}

// Apply returns a new slice holding the matching items in query order.
// items itself is never modified.
func (q Query[T]) Apply(items []T) []T {
	search := strings.TrimSpace(q.Search)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if search == "" || q.Match == nil || q.Match(item, search) {
			out = append(out, item)
		}
	}
	if q.Less != nil {
		sort.SliceStable(out, func(i, j int) bool {
			if q.Desc {
				return q.Less(out[j], out[i])
			}
			return q.Less(out[i], out[j])
		})
	}
	return out
}

// List composes a Query with a Paginator. It is the layer that knows about
// filtering: a query whose Key changes sends the paginator back to page 1,
// while new source data with the same query only clamps the current page.
type List[T any] struct {
	source []T
	query  Query[T]
	pager  *Paginator[T]
}

// NewList returns a List over source with an empty query, on page 1.
func NewList[T any](source []T, opts Options) *List[T] {
	l := &List[T]{source: source}
	l.pager = New(l.query.Apply(source), opts)
	return l
}

// SetQuery applies q to the source.
func (l *List[T]) SetQuery(q Query[T]) {
	changed := q.Key() != l.query.Key()
	l.query = q
	filtered := q.Apply(l.source)
	if changed {
		l.pager.Reset(filtered)
		return
	}
	l.pager.SetItems(filtered)
}

// SetSource replaces the unfiltered data and re-applies the current query.
func (l *List[T]) SetSource(source []T) {
	l.source = source
	l.pager.SetItems(l.query.Apply(source))
}

func (l *List[T]) Paginate(page int) bool { return l.pager.Paginate(page) }
func (l *List[T]) View() View[T]          { return l.pager.View() }
func (l *List[T]) Query() Query[T]        { return l.query }
func (l *List[T]) Paginator() *Paginator[T] {
	return l.pager
}

// Bind subscribes the underlying paginator to policy. See Paginator.Bind.
func (l *List[T]) Bind(policy Policy, src WidthSource) (release func()) {
	return l.pager.Bind(policy, src)
}
