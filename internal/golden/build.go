package golden

import (
	"context"
	"fmt"
	"slices"

	"github.com/san-kum/plantsim/internal/plant"
	"github.com/san-kum/plantsim/internal/trajectory"
)

// Build discretizes the plant and generates every scenario into a new
// dataset.
func Build(ctx context.Context, p plant.Params, dt float64, scenarios []trajectory.Scenario, opts ...trajectory.EnsembleOption) (*Dataset, error) {
	m, err := plant.NewSecondOrder(p.Wn, p.Zeta, dt)
	if err != nil {
		return nil, err
	}
	d, err := m.Discretize()
	if err != nil {
		return nil, err
	}
	trajs, err := trajectory.NewEnsemble(d, opts...).Run(ctx, scenarios)
	if err != nil {
		return nil, err
	}
	return &Dataset{Params: p, SampleTime: dt, Trajectories: trajs}, nil
}

// Verify replays the stored inputs through plant and compares the outputs
// against the stored ones. Trajectories stored without input are driven
// with zero input. The plant must already be initialized with the dataset's
// model.
func Verify(ctx context.Context, d *Dataset, p trajectory.Plant, tol Tolerance) ([]Report, error) {
	live := trajectory.NewLive(p, d.SampleTime)
	reports := make([]Report, 0, len(d.Trajectories))
	for _, name := range d.Names() {
		want := d.Trajectories[name]
		if want.Len() < 2 {
			got, err := replayShort(ctx, p, want)
			if err != nil {
				return nil, fmt.Errorf("replay %s: %w", name, err)
			}
			r := Compare(want, got, tol)
			r.Name = name
			reports = append(reports, r)
			continue
		}

		var profile trajectory.Profile = trajectory.Zero{}
		if want.HasInput() {
			profile = trajectory.Sequence{Values: want.Input}
		}
		sc := trajectory.Scenario{
			Name:      name,
			Span:      float64(want.Len()-1) * d.SampleTime,
			Profile:   profile,
			OmitInput: !want.HasInput(),
		}
		got, err := live.Trajectory(ctx, sc)
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", name, err)
		}
		r := Compare(want, got, tol)
		r.Name = name
		reports = append(reports, r)
	}
	return reports, nil
}

// replayShort handles trajectories with no span to generate over: at most
// one step from the reset state.
func replayShort(ctx context.Context, p trajectory.Plant, want *trajectory.Trajectory) (*trajectory.Trajectory, error) {
	got := &trajectory.Trajectory{Time: slices.Clone(want.Time)}
	if want.HasInput() {
		got.Input = slices.Clone(want.Input)
	}
	if err := p.Reset(ctx); err != nil {
		return nil, err
	}
	for i := range want.Len() {
		u := 0.0
		if want.HasInput() {
			u = want.Input[i]
		}
		y, err := p.Step(ctx, u)
		if err != nil {
			return nil, err
		}
		got.Output = append(got.Output, y)
	}
	return got, nil
}

// VerifyLocal is Verify against a fresh in-process simulator built from the
// dataset's own parameters.
func VerifyLocal(ctx context.Context, d *Dataset, tol Tolerance) ([]Report, error) {
	m, err := d.Model()
	if err != nil {
		return nil, err
	}
	disc, err := m.Discretize()
	if err != nil {
		return nil, err
	}
	sim := plant.NewSimulator()
	if err := sim.Initialize(disc); err != nil {
		return nil, err
	}
	return Verify(ctx, d, trajectory.LocalPlant(sim), tol)
}
