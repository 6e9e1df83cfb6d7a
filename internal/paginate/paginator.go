// Package paginate splits an ordered sequence of records into pages and
// computes which page buttons to show around the current page.
//
// A Paginator never re-sorts or filters what it is given. Filtering and
// sorting happen one layer up, in List, before the sequence reaches the
// paginator.
package paginate

// DefaultPreset is used for any preset value that is not positive.
var DefaultPreset = Preset{ItemsPerPage: 10, MaxPageButtons: 5}

// Options configures a Paginator.
type Options struct {
	Preset  Preset
	Variant Variant
}

// View is a snapshot of paginator state for the render layer.
type View[T any] struct {
	Items          []T   `json:"currentPageItems"`
	CurrentPage    int   `json:"currentPage"`
	TotalPages     int   `json:"totalPages"`
	PageRange      []int `json:"pageRange"`
	Total          int   `json:"total"`
	ItemsPerPage   int   `json:"itemsPerPage"`
	MaxPageButtons int   `json:"maxPageButtons"`
	HasPrevious    bool  `json:"hasPrevious"`
	HasNext        bool  `json:"hasNext"`
}

// Empty reports whether there is nothing to paginate.
func (v View[T]) Empty() bool {
	return v.Total == 0
}

// Paginator holds the current page over an ordered item sequence.
//
// A Paginator is owned by a single request (or page mount) and is not safe
// for concurrent use.
type Paginator[T any] struct {
	items   []T
	preset  Preset
	variant Variant
	current int
}

// New returns a Paginator positioned on page 1.
func New[T any](items []T, opts Options) *Paginator[T] {
	return &Paginator[T]{
		items:   items,
		preset:  opts.Preset.orDefault(),
		variant: opts.Variant,
		current: 1,
	}
}

// TotalPages returns ceil(n / itemsPerPage), or 0 when there is nothing to show.
func TotalPages(n, itemsPerPage int) int {
	if n <= 0 || itemsPerPage <= 0 {
		return 0
	}
	return (n-1)/itemsPerPage + 1
}

// Slice returns items[(page-1)*itemsPerPage : page*itemsPerPage], clipped to
// the bounds of items. Pages outside the sequence yield an empty slice.
//
// The result shares the backing array of items but has its capacity capped,
// so appending to it never overwrites the next page.
func Slice[T any](items []T, page, itemsPerPage int) []T {
	if page < 1 || page > TotalPages(len(items), itemsPerPage) {
		return []T{}
	}
	start := (page - 1) * itemsPerPage
	end := start + min(itemsPerPage, len(items)-start)
	return items[start:end:end]
}

// Paginate moves to page when 1 <= page <= TotalPages. Any other request is
// ignored. It reports whether the current page changed.
func (p *Paginator[T]) Paginate(page int) bool {
	if page < 1 || page > p.TotalPages() || page == p.current {
		return false
	}
	p.current = page
	return true
}

// SetPreset changes the page size and the number of page buttons, then
// clamps the current page to the new page count. Presets with non-positive
// values are ignored.
func (p *Paginator[T]) SetPreset(preset Preset) {
	if !preset.valid() {
		return
	}
	p.preset = preset
	p.clamp()
}

// SetItems replaces the sequence and clamps the current page.
func (p *Paginator[T]) SetItems(items []T) {
	p.items = items
	p.clamp()
}

// Reset replaces the sequence and returns to page 1.
func (p *Paginator[T]) Reset(items []T) {
	p.items = items
	p.current = 1
}

// Bind subscribes the paginator to a page-size policy driven by src. The
// returned release func must be called when the paginator is discarded.
func (p *Paginator[T]) Bind(policy Policy, src WidthSource) (release func()) {
	return policy.Watch(src, p.SetPreset)
}

// clamp keeps 1 <= current <= max(totalPages, 1).
func (p *Paginator[T]) clamp() {
	if total := p.TotalPages(); p.current > total {
		p.current = max(total, 1)
	}
	if p.current < 1 {
		p.current = 1
	}
}

func (p *Paginator[T]) CurrentPage() int { return p.current }
func (p *Paginator[T]) Len() int         { return len(p.items) }
func (p *Paginator[T]) Preset() Preset   { return p.preset }
func (p *Paginator[T]) Variant() Variant { return p.variant }

func (p *Paginator[T]) TotalPages() int {
	return TotalPages(len(p.items), p.preset.ItemsPerPage)
}

func (p *Paginator[T]) CurrentPageItems() []T {
	return Slice(p.items, p.current, p.preset.ItemsPerPage)
}

func (p *Paginator[T]) PageRange() []int {
	return PageRange(p.current, p.TotalPages(), p.preset.MaxPageButtons, p.variant)
}

func (p *Paginator[T]) HasPrevious() bool { return p.current > 1 }
func (p *Paginator[T]) HasNext() bool     { return p.current < p.TotalPages() }

// View returns a snapshot of the current state.
func (p *Paginator[T]) View() View[T] {
	return View[T]{
		Items:          p.CurrentPageItems(),
		CurrentPage:    p.current,
		TotalPages:     p.TotalPages(),
		PageRange:      p.PageRange(),
		Total:          len(p.items),
		ItemsPerPage:   p.preset.ItemsPerPage,
		MaxPageButtons: p.preset.MaxPageButtons,
		HasPrevious:    p.HasPrevious(),
		HasNext:        p.HasNext(),
	}
}
