package integrators

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/plantsim/internal/golden"
	"github.com/san-kum/plantsim/internal/plant"
	"github.com/san-kum/plantsim/internal/trajectory"
)

func oscillator(dst, x []float64, _ float64) {
	dst[0] = x[1]
	dst[1] = -x[0]
}

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()

	x := []float64{1.0, 0.0}
	dt := 0.01
	steps := 100
	for i := 0; i < steps; i++ {
		integ.Step(oscillator, x, 0, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", x[1], expectedV)
	}
}

func newReference(t *testing.T, p plant.Params, dt float64) *Reference {
	t.Helper()
	ss, err := p.StateSpace()
	if err != nil {
		t.Fatal(err)
	}
	ref, err := NewReference(ss, dt, 50)
	if err != nil {
		t.Fatal(err)
	}
	return ref
}

func TestReferenceMatchesDiscretization(t *testing.T) {
	p := plant.Params{Wn: 10, Zeta: 0.7}
	dt := 0.01
	scenarios := []trajectory.Scenario{
		{Name: "step", Span: 2, Profile: trajectory.Step{Amplitude: 1}},
		{Name: "sine", Span: 2, Profile: trajectory.Sine{Amplitude: 1, Frequency: 3}},
		{Name: "impulse", Span: 1, Profile: trajectory.Impulse{Amplitude: 1}},
	}
	ds, err := golden.Build(context.Background(), p, dt, scenarios)
	if err != nil {
		t.Fatal(err)
	}

	reports, err := golden.Verify(context.Background(), ds, newReference(t, p, dt), golden.Tolerance{Rel: 1e-6, Abs: 1e-8})
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	for _, r := range reports {
		if !r.OK() {
			t.Errorf("continuous reference disagrees: %s", r)
		}
	}
}

func TestReferenceOutputBeforeUpdate(t *testing.T) {
	ref := newReference(t, plant.Params{Wn: 2, Zeta: 0.5}, 0.1)
	ctx := context.Background()

	y, _ := ref.Step(ctx, 1)
	if y != 0 {
		t.Errorf("first output should come from the zero state, got %v", y)
	}
	if ref.State().IsZero() {
		t.Error("state should advance after a step")
	}

	ref.Reset(ctx)
	if !ref.State().IsZero() {
		t.Error("reset should zero the state")
	}
}

func TestNewReferenceErrors(t *testing.T) {
	ss, _ := plant.Params{Wn: 1, Zeta: 1}.StateSpace()
	if _, err := NewReference(ss, 0.1, 0); !errors.Is(err, plant.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for zero substeps, got %v", err)
	}
	if _, err := NewReference(ss, 0, 10); !errors.Is(err, plant.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for zero dt, got %v", err)
	}
}
