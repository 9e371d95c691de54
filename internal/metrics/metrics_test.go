package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/plantsim/internal/plant"
	"github.com/san-kum/plantsim/internal/trajectory"
)

func handCrafted() *trajectory.Trajectory {
	return &trajectory.Trajectory{
		Time:   []float64{0, 1, 2, 3, 4},
		Input:  []float64{1, 1, 1, 1, 1},
		Output: []float64{0, 0.5, 1.2, 0.95, 1.0},
	}
}

func TestResponseMetrics(t *testing.T) {
	tests := []struct {
		metric Metric
		want   float64
	}{
		{NewFinalValue(), 1.0},
		{NewOvershoot(1), 20},
		{NewRiseTime(1), 1},
		{NewSettlingTime(1, 0.02), 4},
		{NewSettlingTime(1, 0.1), 3},
		{NewTrackingError(), 1},
		{NewEffort(), 1},
		{NewEnergy(), 0.25 + 1.44 + 0.9025 + 1},
	}

	traj := handCrafted()
	for _, tt := range tests {
		t.Run(tt.metric.Name(), func(t *testing.T) {
			got := Evaluate(traj, tt.metric)[0].Value
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("%s = %v, want %v", tt.metric.Name(), got, tt.want)
			}
		})
	}
}

func TestNegativeTarget(t *testing.T) {
	traj := &trajectory.Trajectory{
		Time:   []float64{0, 1, 2, 3},
		Output: []float64{0, -0.5, -2.2, -2},
	}
	if got := Evaluate(traj, NewOvershoot(-2))[0].Value; math.Abs(got-10) > 1e-9 {
		t.Errorf("overshoot = %v, want 10", got)
	}
	if got := Evaluate(traj, NewRiseTime(-2))[0].Value; math.Abs(got-1) > 1e-9 {
		t.Errorf("rise time = %v, want 1", got)
	}
}

func TestUnreachedTarget(t *testing.T) {
	traj := &trajectory.Trajectory{
		Time:   []float64{0, 1, 2},
		Output: []float64{0, 0.2, 0.4},
	}
	if v := Evaluate(traj, NewRiseTime(1))[0].Value; !math.IsNaN(v) {
		t.Errorf("rise time should be NaN when 90%% is never reached, got %v", v)
	}
	if v := Evaluate(traj, NewSettlingTime(1, 0.02))[0].Value; !math.IsNaN(v) {
		t.Errorf("settling time should be NaN when never settled, got %v", v)
	}
	if v := Evaluate(traj, NewOvershoot(1))[0].Value; v != 0 {
		t.Errorf("overshoot should be 0 below target, got %v", v)
	}
}

func TestEmptyTrajectory(t *testing.T) {
	res := Evaluate(&trajectory.Trajectory{}, NewFinalValue(), NewEffort())
	if !math.IsNaN(res[0].Value) {
		t.Errorf("final value of empty trajectory should be NaN, got %v", res[0].Value)
	}
	if res[1].Value != 0 {
		t.Errorf("effort of empty trajectory should be 0, got %v", res[1].Value)
	}
}

func TestEvaluateResets(t *testing.T) {
	m := NewTrackingError()
	Evaluate(&trajectory.Trajectory{Time: []float64{0}, Input: []float64{5}, Output: []float64{0}}, m)
	if got := Evaluate(handCrafted(), m)[0].Value; got != 1 {
		t.Errorf("stale state leaked between evaluations, got %v", got)
	}
}

func TestSecondOrderStepResponse(t *testing.T) {
	const dt = 0.001
	m, err := plant.NewSecondOrder(10, 0.7, dt)
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
	traj, err := trajectory.Generate(context.Background(), sim, 2.0, dt, trajectory.Step{Amplitude: 1})
	if err != nil {
		t.Fatal(err)
	}

	got := map[string]float64{}
	for _, r := range Evaluate(traj, StepResponse(1)...) {
		got[r.Name] = r.Value
	}

	// Closed-form overshoot for zeta=0.7 is exp(-pi*zeta/sqrt(1-zeta^2)), about 4.6%.
	bounds := map[string][2]float64{
		"final_value":        {0.99, 1.01},
		"overshoot_pct":      {4.0, 5.2},
		"rise_time":          {0.15, 0.3},
		"settling_time":      {0.4, 0.9},
		"max_tracking_error": {1, 1},
		"effort":             {1, 1},
		"output_energy":      {1.4, 2.0},
	}
	for name, b := range bounds {
		v, ok := got[name]
		if !ok {
			t.Errorf("missing metric %s", name)
			continue
		}
		if v < b[0] || v > b[1] {
			t.Errorf("%s = %v, want within [%v, %v]", name, v, b[0], b[1])
		}
	}
}
