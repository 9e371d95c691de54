package integrators

import (
	"context"
	"fmt"

	"github.com/san-kum/plantsim/internal/plant"
)

// Reference simulates a continuous plant by integrating ẋ = Ax + Bu with RK4
// while holding u constant over each sample interval. It follows the same
// output-before-update convention as plant.Simulator, so it serves as an
// independent check of the zero-order-hold discretization.
type Reference struct {
	a        [][]float64
	b, c     []float64
	d        float64
	dt       float64
	substeps int
	x        []float64
	rk       *RK4
}

// NewReference builds a reference for ss sampled every dt, taking substeps
// RK4 steps per sample.
func NewReference(ss plant.StateSpace, dt float64, substeps int) (*Reference, error) {
	if substeps < 1 {
		return nil, fmt.Errorf("%w: substeps must be at least 1, got %d", plant.ErrInvalidParameter, substeps)
	}
	if !(dt > 0) {
		return nil, fmt.Errorf("%w: sample interval must be positive, got %v", plant.ErrInvalidParameter, dt)
	}
	n := ss.Order()
	a, b, c := ss.A(), ss.B(), ss.C()
	r := &Reference{
		a:        a.Rows(),
		b:        make([]float64, n),
		c:        make([]float64, n),
		d:        ss.D().At(0, 0),
		dt:       dt,
		substeps: substeps,
		x:        make([]float64, n),
		rk:       NewRK4(),
	}
	for i := 0; i < n; i++ {
		r.b[i] = b.At(i, 0)
		r.c[i] = c.At(0, i)
	}
	return r, nil
}

func (r *Reference) derive(dst, x []float64, u float64) {
	for i, row := range r.a {
		sum := r.b[i] * u
		for j, v := range row {
			sum += v * x[j]
		}
		dst[i] = sum
	}
}

// Step returns y = Cx + Du, then integrates one sample interval.
func (r *Reference) Step(_ context.Context, u float64) (float64, error) {
	y := r.d * u
	for i, v := range r.x {
		y += r.c[i] * v
	}
	h := r.dt / float64(r.substeps)
	for range r.substeps {
		r.rk.Step(r.derive, r.x, u, h)
	}
	return y, nil
}

func (r *Reference) Reset(context.Context) error {
	clear(r.x)
	return nil
}

func (r *Reference) State() plant.State {
	return plant.State(r.x).Clone()
}
