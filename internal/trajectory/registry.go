package trajectory

import (
	"fmt"
	"sort"
)

// ProfileSpec is the declarative form of a profile as it appears in
// configuration files.
type ProfileSpec struct {
	Kind   string             `yaml:"kind" json:"kind"`
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
	Values []float64          `yaml:"values,omitempty" json:"values,omitempty"`
}

// Registry builds profiles by kind name.
type Registry struct {
	profiles map[string]func(ProfileSpec) (Profile, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		profiles: make(map[string]func(ProfileSpec) (Profile, error)),
	}

	r.profiles["step"] = func(s ProfileSpec) (Profile, error) {
		amp, ok := s.Params["amplitude"]
		if !ok {
			amp = 1
		}
		return Step{Amplitude: amp, Delay: s.Params["delay"]}, nil
	}
	r.profiles["sine"] = func(s ProfileSpec) (Profile, error) {
		freq := s.Params["frequency"]
		if freq < 0 {
			return nil, fmt.Errorf("sine frequency must be non-negative, got %v", freq)
		}
		amp, ok := s.Params["amplitude"]
		if !ok {
			amp = 1
		}
		return Sine{Amplitude: amp, Frequency: freq, Phase: s.Params["phase"], Offset: s.Params["offset"]}, nil
	}
	r.profiles["impulse"] = func(s ProfileSpec) (Profile, error) {
		amp, ok := s.Params["amplitude"]
		if !ok {
			amp = 1
		}
		return Impulse{Amplitude: amp}, nil
	}
	r.profiles["ramp"] = func(s ProfileSpec) (Profile, error) {
		slope, ok := s.Params["slope"]
		if !ok {
			slope = 1
		}
		return Ramp{Slope: slope}, nil
	}
	r.profiles["sequence"] = func(s ProfileSpec) (Profile, error) {
		if len(s.Values) == 0 {
			return nil, fmt.Errorf("sequence profile needs values")
		}
		return Sequence{Values: append([]float64(nil), s.Values...)}, nil
	}
	r.profiles["zero"] = func(ProfileSpec) (Profile, error) {
		return Zero{}, nil
	}

	return r
}

func (r *Registry) Build(spec ProfileSpec) (Profile, error) {
	fn, ok := r.profiles[spec.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, spec.Kind)
	}
	p, err := fn(spec)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", spec.Kind, err)
	}
	return p, nil
}

func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
