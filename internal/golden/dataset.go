// Package golden stores reference trajectories for a plant together with the
// parameters and sample interval that produced them, and compares fresh
// trajectories against them.
package golden

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/san-kum/plantsim/internal/plant"
	"github.com/san-kum/plantsim/internal/trajectory"
)

// ErrSchemaMismatch indicates golden data that does not have the expected
// shape.
var ErrSchemaMismatch = errors.New("golden: schema mismatch")

const (
	keyParams     = "plant_params"
	keySampleTime = "sample_time"
)

// Dataset is the content of one golden file.
type Dataset struct {
	Params       plant.Params
	SampleTime   float64
	Trajectories map[string]*trajectory.Trajectory
}

// Reserved reports whether name collides with a top-level key of the file
// format and so cannot name a trajectory.
func Reserved(name string) bool {
	return name == keyParams || name == keySampleTime
}

// Names returns the trajectory names in sorted order.
func (d *Dataset) Names() []string {
	names := make([]string, 0, len(d.Trajectories))
	for n := range d.Trajectories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Validate checks everything Encode would reject.
func (d *Dataset) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil dataset", plant.ErrInvalidParameter)
	}
	if err := d.Params.Validate(); err != nil {
		return err
	}
	if !isFinite(d.SampleTime) || d.SampleTime <= 0 {
		return fmt.Errorf("%w: sample time must be positive, got %v", plant.ErrInvalidParameter, d.SampleTime)
	}
	for _, name := range d.Names() {
		t := d.Trajectories[name]
		switch {
		case strings.TrimSpace(name) == "":
			return fmt.Errorf("%w: empty trajectory name", plant.ErrInvalidParameter)
		case Reserved(name):
			return fmt.Errorf("%w: trajectory name %q is reserved", plant.ErrInvalidParameter, name)
		case t == nil:
			return fmt.Errorf("%w: trajectory %q is nil", plant.ErrInvalidParameter, name)
		}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: trajectory %q: %v", plant.ErrInvalidParameter, name, err)
		}
		for _, seq := range [][]float64{t.Time, t.Input, t.Output} {
			if slices.ContainsFunc(seq, func(v float64) bool { return !isFinite(v) }) {
				return fmt.Errorf("%w: trajectory %q holds a non-finite value", plant.ErrInvalidParameter, name)
			}
		}
	}
	return nil
}

// Model rebuilds the plant descriptor the dataset was generated from.
func (d *Dataset) Model() (*plant.Model, error) {
	return plant.NewSecondOrder(d.Params.Wn, d.Params.Zeta, d.SampleTime)
}

// Source serves the stored trajectories by name.
func (d *Dataset) Source() trajectory.Source {
	return trajectory.NewReplay(d.Trajectories)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
