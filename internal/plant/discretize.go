package plant

import (
	"errors"

	"github.com/san-kum/plantsim/internal/linalg"
)

// Discrete is the zero-order-hold equivalent of a continuous model:
//
//	x[k+1] = Ad·x[k] + Bd·u[k]
//	y[k]   = Cd·x[k] + Dd·u[k]
type Discrete struct {
	ad, bd, cd, dd linalg.Matrix
	dt             float64
}

// Discretize computes the exact zero-order-hold equivalent of ss at sample
// interval dt.
//
// Both matrices come out of one exponential of the augmented matrix
//
//	exp([[A, B], [0, 0]]·dt) = [[Ad, Bd], [0, I]]
//
// so Bd = ∫₀^dt exp(Aτ)·B dτ is obtained without inverting A. Cd and Dd are
// C and D unchanged.
func Discretize(ss StateSpace, dt float64) (*Discrete, error) {
	if err := validateInterval(dt); err != nil {
		return nil, err
	}
	n := ss.Order()
	if n == 0 {
		return nil, invalidParam("discretize", "empty state-space realization")
	}

	aug := linalg.New(n+1, n+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			aug.Set(i, j, ss.a.At(i, j)*dt)
		}
		aug.Set(i, n, ss.b.At(i, 0)*dt)
	}

	e, err := linalg.Expm(aug)
	if err != nil {
		detail := "matrix exponential failed"
		if errors.Is(err, linalg.ErrNoConvergence) {
			detail = "matrix exponential series did not converge"
		} else if errors.Is(err, linalg.ErrNotFinite) {
			detail = "matrix exponential is not finite"
		}
		return nil, &Error{Op: "discretize", Detail: detail, Wrapped: ErrIllConditioned}
	}

	return &Discrete{
		ad: e.Slice(0, n, 0, n),
		bd: e.Slice(0, n, n, n+1),
		cd: ss.c.Clone(),
		dd: ss.d.Clone(),
		dt: dt,
	}, nil
}

func (d *Discrete) Order() int {
	n, _ := d.ad.Dims()
	return n
}

func (d *Discrete) SampleInterval() float64 { return d.dt }

func (d *Discrete) Ad() linalg.Matrix { return d.ad.Clone() }
func (d *Discrete) Bd() linalg.Matrix { return d.bd.Clone() }
func (d *Discrete) Cd() linalg.Matrix { return d.cd.Clone() }
func (d *Discrete) Dd() linalg.Matrix { return d.dd.Clone() }

// DCGain returns the steady-state output for a unit constant input,
// Cd·(I−Ad)⁻¹·Bd + Dd. It fails with ErrIllConditioned when Ad has a pole at
// z = 1.
func (d *Discrete) DCGain() (float64, error) {
	n := d.Order()
	iMinusA := linalg.Add(linalg.Identity(n), d.ad.Scale(-1))
	x, err := linalg.Solve(iMinusA, d.bd)
	if err != nil {
		return 0, &Error{Op: "dc gain", Detail: "pole at z=1", Wrapped: ErrIllConditioned}
	}
	return linalg.Mul(d.cd, x).At(0, 0) + d.dd.At(0, 0), nil
}
