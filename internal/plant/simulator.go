package plant

import "github.com/san-kum/plantsim/internal/linalg"

// Simulator advances a discrete plant one sample at a time. It starts
// Uninitialized; Initialize moves it to Ready.
type Simulator struct {
	model *Discrete
	x     State
	next  State

	a linalg.Matrix
	b []float64
	c []float64
	d float64
}

func NewSimulator() *Simulator {
	return &Simulator{}
}

// Initialize binds the simulator to m and zeroes the state. Calling it again
// re-initializes with the new model and discards prior state.
func (s *Simulator) Initialize(m *Discrete) error {
	if m == nil {
		return invalidParam("initialize", "nil model")
	}
	n := m.Order()
	s.model = m
	s.x = make(State, n)
	s.next = make(State, n)
	s.a = m.ad
	s.b = make([]float64, n)
	s.c = make([]float64, n)
	for i := 0; i < n; i++ {
		s.b[i] = m.bd.At(i, 0)
		s.c[i] = m.cd.At(0, i)
	}
	s.d = m.dd.At(0, 0)
	return nil
}

func (s *Simulator) Ready() bool {
	return s.model != nil
}

// Reset zeroes the state and keeps the model.
func (s *Simulator) Reset() error {
	if !s.Ready() {
		return &Error{Op: "reset", Wrapped: ErrNotInitialized}
	}
	for i := range s.x {
		s.x[i] = 0
	}
	return nil
}

// Step returns y = C·x + D·u computed from the current state, then advances
// x ← A·x + B·u.
func (s *Simulator) Step(u float64) (float64, error) {
	if !s.Ready() {
		return 0, &Error{Op: "step", Wrapped: ErrNotInitialized}
	}

	y := linalg.Dot(s.c, s.x) + s.d*u

	n := len(s.x)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += s.a.At(i, j) * s.x[j]
		}
		s.next[i] = sum + s.b[i]*u
	}
	s.x, s.next = s.next, s.x

	return y, nil
}

// State returns a copy of the current state vector, or nil when
// Uninitialized.
func (s *Simulator) State() State {
	if !s.Ready() {
		return nil
	}
	return s.x.Clone()
}

func (s *Simulator) Model() *Discrete {
	return s.model
}
