package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/plantsim/internal/plant"
	"github.com/san-kum/plantsim/internal/trajectory"
)

// GridSearch fits plant parameters to a recorded trajectory by evaluating
// every (ωn, ζ) pair on a grid, then repeatedly shrinking the grid around the
// best pair.
type GridSearch struct {
	Wn     []float64
	Zeta   []float64
	Refine int
	Shrink float64
}

type Fit struct {
	Params      plant.Params
	RMS         float64
	Evaluations int
}

func NewGridSearch(wn, zeta []float64) *GridSearch {
	return &GridSearch{Wn: wn, Zeta: zeta, Shrink: 0.25}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Search replays the recorded input of t through each candidate plant at
// sample interval dt and returns the pair with the smallest RMS output
// error. Candidates that fail to build are skipped.
func (g *GridSearch) Search(ctx context.Context, t *trajectory.Trajectory, dt float64) (*Fit, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if !t.HasInput() {
		return nil, fmt.Errorf("%w: fitting needs a recorded input", plant.ErrInvalidParameter)
	}
	if len(g.Wn) == 0 || len(g.Zeta) == 0 {
		return nil, fmt.Errorf("%w: empty search grid", plant.ErrInvalidParameter)
	}
	if t.Len() < 2 {
		return nil, fmt.Errorf("%w: fitting needs at least two samples", plant.ErrInvalidParameter)
	}
	span := t.Time[t.Len()-1]

	best := &Fit{RMS: math.Inf(1)}
	wns, zetas := g.Wn, g.Zeta
	for round := 0; ; round++ {
		for _, wn := range wns {
			for _, zeta := range zetas {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				rms, ok := evaluate(ctx, t, plant.Params{Wn: wn, Zeta: zeta}, span, dt)
				best.Evaluations++
				if ok && rms < best.RMS {
					best.RMS = rms
					best.Params = plant.Params{Wn: wn, Zeta: zeta}
				}
			}
		}
		if round == g.Refine || math.IsInf(best.RMS, 1) {
			break
		}
		wns = around(best.Params.Wn, wns, g.Shrink, len(g.Wn))
		zetas = around(best.Params.Zeta, zetas, g.Shrink, len(g.Zeta))
	}

	if math.IsInf(best.RMS, 1) {
		return nil, fmt.Errorf("%w: no candidate plant could be simulated", plant.ErrInvalidParameter)
	}
	return best, nil
}

// around builds the next, narrower grid centred on v. Invalid values it
// produces (ωn ≤ 0, ζ < 0) are skipped by Search.
func around(v float64, prev []float64, shrink float64, n int) []float64 {
	half := (prev[len(prev)-1] - prev[0]) * shrink / 2
	if half == 0 {
		return []float64{v}
	}
	return Linspace(v-half, v+half, n)
}

func evaluate(ctx context.Context, t *trajectory.Trajectory, p plant.Params, span, dt float64) (float64, bool) {
	m, err := plant.NewSecondOrder(p.Wn, p.Zeta, dt)
	if err != nil {
		return 0, false
	}
	d, err := m.Discretize()
	if err != nil {
		return 0, false
	}
	sim := plant.NewSimulator()
	if err := sim.Initialize(d); err != nil {
		return 0, false
	}
	got, err := trajectory.Generate(ctx, sim, span, dt, trajectory.Sequence{Values: t.Input})
	if err != nil || got.Len() != t.Len() {
		return 0, false
	}

	sum := 0.0
	for i, y := range got.Output {
		e := y - t.Output[i]
		sum += e * e
	}
	rms := math.Sqrt(sum / float64(t.Len()))
	if math.IsNaN(rms) {
		return 0, false
	}
	return rms, true
}
