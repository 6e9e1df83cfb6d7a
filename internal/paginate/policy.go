package paginate

import (
	"fmt"
	"sync"
)

// DefaultThreshold is the viewport width, in CSS pixels, below which the
// narrow preset applies.
const DefaultThreshold = 768

// Preset is the page size and page-button count used for one viewport class.
type Preset struct {
	ItemsPerPage   int `json:"itemsPerPage"`
	MaxPageButtons int `json:"maxPageButtons"`
}

func (p Preset) valid() bool {
	return p.ItemsPerPage > 0 && p.MaxPageButtons > 0
}

func (p Preset) orDefault() Preset {
	if p.ItemsPerPage <= 0 {
		p.ItemsPerPage = DefaultPreset.ItemsPerPage
	}
	if p.MaxPageButtons <= 0 {
		p.MaxPageButtons = DefaultPreset.MaxPageButtons
	}
	return p
}

// WidthSource is a viewport width signal that can be sampled and observed.
type WidthSource interface {
	Width() int
	Subscribe(fn func(width int)) (cancel func())
}

// Policy maps a viewport width to a Preset. Widths below Threshold select
// Narrow, all others select Wide. A zero Threshold means DefaultThreshold.
type Policy struct {
	Threshold int
	Narrow    Preset
	Wide      Preset
}

func (p Policy) threshold() int {
	if p.Threshold <= 0 {
		return DefaultThreshold
	}
	return p.Threshold
}

// IsNarrow reports whether width falls below the threshold.
func (p Policy) IsNarrow(width int) bool {
	return width < p.threshold()
}

// For returns the preset for width.
func (p Policy) For(width int) Preset {
	return p.preset(p.IsNarrow(width))
}

func (p Policy) preset(narrow bool) Preset {
	if narrow {
		return p.Narrow.orDefault()
	}
	return p.Wide.orDefault()
}

// Validate reports whether both presets carry positive values.
func (p Policy) Validate() error {
	if !p.Narrow.valid() {
		return errInvalidPreset("narrow", p.Narrow)
	}
	if !p.Wide.valid() {
		return errInvalidPreset("wide", p.Wide)
	}
	return nil
}

// Watch calls fn with the preset for the width src reports right now, and
// then again each time an observed width crosses the threshold. Widths that
// stay on the same side of the threshold emit nothing.
//
// fn is never called with the watch's lock held, so a source may replay its
// width from inside Subscribe, and fn may feed new widths back into src.
// Crossings seen before the first emission only update the starting preset.
//
// The returned release func removes the subscription. It is safe to call
// more than once.
func (p Policy) Watch(src WidthSource, fn func(Preset)) (release func()) {
	var (
		mu      sync.Mutex
		narrow  = p.IsNarrow(src.Width())
		started bool
	)
	cancel := src.Subscribe(func(width int) {
		next := p.IsNarrow(width)

		mu.Lock()
		crossed := next != narrow
		narrow = next
		emit := crossed && started
		mu.Unlock()

		if emit {
			fn(p.preset(next))
		}
	})

	mu.Lock()
	started = true
	first := narrow
	mu.Unlock()
	fn(p.preset(first))

	var once sync.Once
	return func() { once.Do(cancel) }
}

// Settings bundles everything one list needs to build its paginator.
type Settings struct {
	Policy  Policy
	Variant Variant
}

// Options returns paginator options for the given viewport width.
func (s Settings) Options(width int) Options {
	return Options{Preset: s.Policy.For(width), Variant: s.Variant}
}

func errInvalidPreset(name string, p Preset) error {
	return fmt.Errorf("%s preset must have positive values, got items_per_page=%d max_page_buttons=%d",
		name, p.ItemsPerPage, p.MaxPageButtons)
}
