package paginate

import (
	"fmt"
	"strings"
)

// Variant selects how the page-button window behaves near the first and
// last pages.
type Variant int

const (
	// VariantB packs the window against the boundary it touches, so it
	// always shows min(maxButtons, totalPages) buttons. It is the default.
	VariantB Variant = iota

	// VariantA keeps the window anchored on the current page and lets it
	// shrink near the last page.
	VariantA
)

func (v Variant) String() string {
	if v == VariantA {
		return "a"
	}
	return "b"
}

// ParseVariant accepts "a" or "b" (case-insensitive). Empty means VariantB.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "b":
		return VariantB, nil
	case "a":
		return VariantA, nil
	default:
		return VariantB, fmt.Errorf("unknown page range variant %q", s)
	}
}

// PageRange returns the contiguous page numbers to render as buttons,
// centered on current and clipped to [1, total].
func PageRange(current, total, maxButtons int, variant Variant) []int {
	if total <= 0 || maxButtons <= 0 {
		return []int{}
	}
	if maxButtons >= total {
		return seq(1, total)
	}

	current = min(max(current, 1), total)
	start := max(1, current-maxButtons/2)
	end := min(total, start+maxButtons-1)
	if variant == VariantB && end-start+1 < maxButtons {
		start = max(1, end-maxButtons+1)
	}
	return seq(start, end)
}

func seq(start, end int) []int {
	if end < start {
		return []int{}
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
