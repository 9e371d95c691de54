package trajectory

import (
	"context"
	"fmt"

	"github.com/san-kum/plantsim/internal/plant"
)

// Scenario names one reference response: a span driven by a profile.
type Scenario struct {
	Name    string
	Span    float64
	Profile Profile
	// OmitInput drops the input sequence from the result, as stored for
	// unforced responses.
	OmitInput bool
}

// Source yields reference trajectories. Test code written against Source
// does not care whether the data is replayed from a golden file or computed
// by a live plant.
type Source interface {
	Trajectory(ctx context.Context, sc Scenario) (*Trajectory, error)
}

// Replay serves trajectories stored under their scenario names.
type Replay struct {
	trajectories map[string]*Trajectory
}

func NewReplay(trajectories map[string]*Trajectory) *Replay {
	return &Replay{trajectories: trajectories}
}

func (r *Replay) Trajectory(_ context.Context, sc Scenario) (*Trajectory, error) {
	t, ok := r.trajectories[sc.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTrajectory, sc.Name)
	}
	return t.Clone(), nil
}

// Plant is a resettable single-input single-output plant whose calls may
// cross a process boundary; ctx bounds each call.
type Plant interface {
	Reset(ctx context.Context) error
	Step(ctx context.Context, u float64) (float64, error)
}

// Live computes trajectories on demand by resetting and driving a Plant.
type Live struct {
	plant Plant
	dt    float64
}

func NewLive(p Plant, dt float64) *Live {
	return &Live{plant: p, dt: dt}
}

func (l *Live) Trajectory(ctx context.Context, sc Scenario) (*Trajectory, error) {
	if _, err := Steps(sc.Span, l.dt); err != nil {
		return nil, err
	}
	if err := l.plant.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset %s: %w", sc.Name, err)
	}
	st := StepperFunc(func(u float64) (float64, error) {
		return l.plant.Step(ctx, u)
	})
	traj, err := Generate(ctx, st, sc.Span, l.dt, sc.Profile)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", sc.Name, err)
	}
	if sc.OmitInput {
		traj.Input = nil
	}
	return traj, nil
}

// LocalPlant adapts an in-process simulator to Plant.
func LocalPlant(sim *plant.Simulator) Plant {
	return localPlant{sim: sim}
}

type localPlant struct {
	sim *plant.Simulator
}

func (l localPlant) Reset(context.Context) error {
	return l.sim.Reset()
}

func (l localPlant) Step(_ context.Context, u float64) (float64, error) {
	return l.sim.Step(u)
}
