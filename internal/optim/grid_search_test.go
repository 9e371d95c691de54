package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/plantsim/internal/plant"
	"github.com/san-kum/plantsim/internal/trajectory"
)

func record(t *testing.T, wn, zeta, dt, span float64) *trajectory.Trajectory {
	t.Helper()
	m, err := plant.NewSecondOrder(wn, zeta, dt)
	if err != nil {
		t.Fatal(err)
	}
	d, err := m.Discretize()
	if err != nil {
		t.Fatal(err)
	}
	sim := plant.NewSimulator()
	if err := sim.Initialize(d); err != nil {
		t.Fatal(err)
	}
	traj, err := trajectory.Generate(context.Background(), sim, span, dt, trajectory.Step{Amplitude: 1})
	if err != nil {
		t.Fatal(err)
	}
	return traj
}

func TestLinspace(t *testing.T) {
	got := Linspace(1, 2, 5)
	want := []float64{1, 1.25, 1.5, 1.75, 2}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-15 {
			t.Errorf("Linspace[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if got := Linspace(3, 9, 1); len(got) != 1 || got[0] != 3 {
		t.Errorf("single point grid = %v", got)
	}
}

func TestSearchExactGridPoint(t *testing.T) {
	traj := record(t, 4, 0.3, 0.01, 3)
	g := NewGridSearch(Linspace(1, 10, 10), Linspace(0, 1, 11))

	fit, err := g.Search(context.Background(), traj, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(fit.Params.Wn-4) > 1e-9 || math.Abs(fit.Params.Zeta-0.3) > 1e-9 {
		t.Errorf("fit = %+v, want wn=4 zeta=0.3", fit.Params)
	}
	if fit.RMS > 1e-6 {
		t.Errorf("rms = %v", fit.RMS)
	}
	if fit.Evaluations != 110 {
		t.Errorf("expected 110 evaluations, got %d", fit.Evaluations)
	}
}

func TestSearchRefines(t *testing.T) {
	traj := record(t, 4.3, 0.37, 0.01, 3)
	g := NewGridSearch(Linspace(1, 10, 10), Linspace(0, 1, 11))
	g.Refine = 4

	fit, err := g.Search(context.Background(), traj, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(fit.Params.Wn-4.3) > 0.05 || math.Abs(fit.Params.Zeta-0.37) > 0.01 {
		t.Errorf("fit = %+v, want about wn=4.3 zeta=0.37", fit.Params)
	}
	if fit.Evaluations != 5*110 {
		t.Errorf("expected %d evaluations, got %d", 5*110, fit.Evaluations)
	}
}

func TestSearchErrors(t *testing.T) {
	traj := record(t, 4, 0.3, 0.01, 1)
	g := NewGridSearch(Linspace(1, 10, 10), Linspace(0, 1, 11))

	free := traj.Clone()
	free.Input = nil
	if _, err := g.Search(context.Background(), free, 0.01); !errors.Is(err, plant.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter without input, got %v", err)
	}

	if _, err := NewGridSearch(nil, []float64{0.5}).Search(context.Background(), traj, 0.01); !errors.Is(err, plant.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for empty grid, got %v", err)
	}

	if _, err := NewGridSearch([]float64{-1}, []float64{-1}).Search(context.Background(), traj, 0.01); !errors.Is(err, plant.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter when no candidate is valid, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Search(ctx, traj, 0.01); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
