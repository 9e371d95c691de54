package config

import (
	"sort"

	"github.com/san-kum/plantsim/internal/plant"
)

type Preset struct {
	Description string
	Params      plant.Params
	SampleTime  float64
}

var Presets = map[string]Preset{
	"reference": {
		Description: "well damped servo, about 5% overshoot",
		Params:      plant.Params{Wn: 10, Zeta: 0.7},
		SampleTime:  0.001,
	},
	"underdamped": {
		Description: "lightly damped, rings for several periods",
		Params:      plant.Params{Wn: 10, Zeta: 0.2},
		SampleTime:  0.001,
	},
	"critical": {
		Description: "critically damped, fastest response without overshoot",
		Params:      plant.Params{Wn: 10, Zeta: 1},
		SampleTime:  0.001,
	},
	"overdamped": {
		Description: "sluggish, two real poles",
		Params:      plant.Params{Wn: 10, Zeta: 2},
		SampleTime:  0.001,
	},
	"undamped": {
		Description: "pure oscillator, never settles",
		Params:      plant.Params{Wn: 5, Zeta: 0},
		SampleTime:  0.001,
	},
	"slow": {
		Description: "low bandwidth plant at a coarse rate",
		Params:      plant.Params{Wn: 1, Zeta: 0.7},
		SampleTime:  0.01,
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply sets the plant and sample time of cfg from the preset.
func (p *Preset) Apply(cfg *Config) {
	cfg.Plant = p.Params
	cfg.SampleTime = p.SampleTime
}
