package internal

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/DukeRupert/tesis/internal/paginate"
	"github.com/go-playground/validator/v10"
)

//go:embed presets.toml
var defaultPresets []byte

// ListNames are the lists the portal renders, in navigation order.
var ListNames = []string{
	"logs", "professors", "coordinators", "reviews",
	"proposals", "sedes", "commissions", "students",
}

type presetValues struct {
	ItemsPerPage   int `toml:"items_per_page" validate:"min=1,max=500"`
	MaxPageButtons int `toml:"max_page_buttons" validate:"min=1,max=50"`
}

type listPresets struct {
	Variant   string       `toml:"variant" validate:"omitempty,oneof=a b A B"`
	Threshold int          `toml:"threshold" validate:"omitempty,min=1,max=16384"`
	Narrow    presetValues `toml:"narrow"`
	Wide      presetValues `toml:"wide"`
}

type presetFile struct {
	Threshold int                    `toml:"threshold" validate:"omitempty,min=1,max=16384"`
	Lists     map[string]listPresets `toml:"lists" validate:"dive,keys,oneof=logs professors coordinators reviews proposals sedes commissions students,endkeys"`
}

// LoadPresets returns the pagination settings of every list. The embedded
// defaults are loaded first; a list present in the file at path replaces
// its default entry. An empty path uses the defaults only.
func LoadPresets(path string) (map[string]paginate.Settings, error) {
	var pf presetFile
	if _, err := toml.Decode(string(defaultPresets), &pf); err != nil {
		return nil, fmt.Errorf("decode default presets: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		md, err := toml.Decode(string(data), &pf)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%s: unknown keys %v", path, undecoded)
		}
	}

	return pf.settings()
}

func (pf presetFile) settings() (map[string]paginate.Settings, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(pf); err != nil {
		return nil, err
	}

	out := make(map[string]paginate.Settings, len(ListNames))
	for _, name := range ListNames {
		lp, ok := pf.Lists[name]
		if !ok {
			return nil, fmt.Errorf("list %q has no presets", name)
		}
		variant, err := paginate.ParseVariant(lp.Variant)
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", name, err)
		}
		threshold := lp.Threshold
		if threshold == 0 {
			threshold = pf.Threshold
		}
		policy := paginate.Policy{
			Threshold: threshold,
			Narrow:    paginate.Preset{ItemsPerPage: lp.Narrow.ItemsPerPage, MaxPageButtons: lp.Narrow.MaxPageButtons},
			Wide:      paginate.Preset{ItemsPerPage: lp.Wide.ItemsPerPage, MaxPageButtons: lp.Wide.MaxPageButtons},
		}
		if err := policy.Validate(); err != nil {
			return nil, fmt.Errorf("list %q: %w", name, err)
		}
		out[name] = paginate.Settings{Policy: policy, Variant: variant}
	}
	return out, nil
}
