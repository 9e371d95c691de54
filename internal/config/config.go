package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/plantsim/internal/golden"
	"github.com/san-kum/plantsim/internal/logging"
	"github.com/san-kum/plantsim/internal/plant"
	"github.com/san-kum/plantsim/internal/trajectory"
)

const (
	DefaultWn         = 10.0
	DefaultZeta       = 0.7
	DefaultSampleTime = 0.001
	DefaultSpan       = 1.0
	DefaultStoreDir   = "golden"
	DefaultDataset    = "reference"
	DefaultAddr       = "127.0.0.1:7654"
	DefaultPath       = "/plant"
	DefaultWorkers    = 4
)

type Config struct {
	Plant      plant.Params     `yaml:"plant"`
	SampleTime float64          `yaml:"sample_time"`
	Dataset    string           `yaml:"dataset"`
	Scenarios  []ScenarioConfig `yaml:"scenarios"`
	Workers    int              `yaml:"workers"`
	Tolerance  golden.Tolerance `yaml:"tolerance"`
	Store      StoreConfig      `yaml:"store"`
	Serve      ServeConfig      `yaml:"serve"`
	Log        logging.Config   `yaml:"log"`
}

type ScenarioConfig struct {
	Name      string                 `yaml:"name"`
	Span      float64                `yaml:"span"`
	Profile   trajectory.ProfileSpec `yaml:"profile"`
	OmitInput bool                   `yaml:"omit_input,omitempty"`
}

type StoreConfig struct {
	Dir    string `yaml:"dir"`
	Indent bool   `yaml:"indent"`
}

type ServeConfig struct {
	Addr        string        `yaml:"addr"`
	Path        string        `yaml:"path"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Plant:      plant.Params{Wn: DefaultWn, Zeta: DefaultZeta},
		SampleTime: DefaultSampleTime,
		Dataset:    DefaultDataset,
		Scenarios:  DefaultScenarios(),
		Workers:    DefaultWorkers,
		Tolerance:  golden.DefaultTolerance,
		Store:      StoreConfig{Dir: DefaultStoreDir},
		Serve:      ServeConfig{Addr: DefaultAddr, Path: DefaultPath},
		Log:        logging.DefaultConfig(),
	}
}

// DefaultScenarios is the reference set: a unit step, a unit impulse and a
// slow sine, each over one second.
func DefaultScenarios() []ScenarioConfig {
	return []ScenarioConfig{
		{Name: "step", Span: DefaultSpan, Profile: trajectory.ProfileSpec{Kind: "step", Params: map[string]float64{"amplitude": 1}}},
		{Name: "impulse", Span: DefaultSpan, Profile: trajectory.ProfileSpec{Kind: "impulse", Params: map[string]float64{"amplitude": 1}}},
		{Name: "sine", Span: DefaultSpan, Profile: trajectory.ProfileSpec{Kind: "sine", Params: map[string]float64{"amplitude": 1, "frequency": 2}}},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Scenarios = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Scenarios == nil {
		cfg.Scenarios = DefaultScenarios()
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the plant, the sample time and that at least one scenario
// is configured and every scenario can be built.
func (c *Config) Validate() error {
	if err := c.Plant.Validate(); err != nil {
		return err
	}
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("%w: no scenarios configured", plant.ErrInvalidParameter)
	}
	if _, err := c.BuildScenarios(trajectory.NewRegistry()); err != nil {
		return err
	}
	return nil
}

// BuildScenarios turns the configured scenarios into runnable ones.
func (c *Config) BuildScenarios(reg *trajectory.Registry) ([]trajectory.Scenario, error) {
	seen := make(map[string]bool, len(c.Scenarios))
	out := make([]trajectory.Scenario, 0, len(c.Scenarios))
	for i, sc := range c.Scenarios {
		switch {
		case sc.Name == "":
			return nil, fmt.Errorf("%w: scenario %d has no name", plant.ErrInvalidParameter, i)
		case golden.Reserved(sc.Name):
			return nil, fmt.Errorf("%w: scenario name %q is reserved", plant.ErrInvalidParameter, sc.Name)
		case seen[sc.Name]:
			return nil, fmt.Errorf("%w: duplicate scenario %q", plant.ErrInvalidParameter, sc.Name)
		}
		seen[sc.Name] = true

		if _, err := trajectory.Steps(sc.Span, c.SampleTime); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		p, err := reg.Build(sc.Profile)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		// Only an unforced response can be replayed without its input.
		if _, unforced := p.(trajectory.Zero); sc.OmitInput && !unforced {
			return nil, fmt.Errorf("%w: scenario %s omits the input of a %s profile", plant.ErrInvalidParameter, sc.Name, sc.Profile.Kind)
		}
		out = append(out, trajectory.Scenario{Name: sc.Name, Span: sc.Span, Profile: p, OmitInput: sc.OmitInput})
	}
	return out, nil
}
