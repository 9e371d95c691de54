package integrators

// Derivative returns ẋ for state x under a constant input u.
type Derivative func(dst, x []float64, u float64)

// RK4 is the classic fourth-order Runge-Kutta step. Scratch buffers are
// reused between calls, so an RK4 is not safe for concurrent use.
type RK4 struct {
	k1, k2, k3, k4 []float64
	scratch        []float64
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make([]float64, n)
		r.k2 = make([]float64, n)
		r.k3 = make([]float64, n)
		r.k4 = make([]float64, n)
		r.scratch = make([]float64, n)
	}
}

// Step advances x in place by dt.
func (r *RK4) Step(f Derivative, x []float64, u, dt float64) {
	n := len(x)
	r.ensureScratch(n)

	f(r.k1, x, u)
	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	f(r.k2, r.scratch, u)
	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	f(r.k3, r.scratch, u)
	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	f(r.k4, r.scratch, u)

	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		x[i] += dt6 * (r.k1[i] + 2*r.k2[i] + 2*r.k3[i] + r.k4[i])
	}
}
