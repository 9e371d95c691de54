package plant

import (
	"math"

	"github.com/san-kum/plantsim/internal/linalg"
)

// Params describes a second-order plant by natural frequency and damping
// ratio.
type Params struct {
	Wn   float64 `json:"wn" yaml:"wn"`
	Zeta float64 `json:"zeta" yaml:"zeta"`
}

func (p Params) Validate() error {
	if !finite(p.Wn) || p.Wn <= 0 {
		return invalidParam("params", "wn must be positive, got %v", p.Wn)
	}
	if !finite(p.Zeta) || p.Zeta < 0 {
		return invalidParam("params", "zeta must be non-negative, got %v", p.Zeta)
	}
	return nil
}

// StateSpace returns the controllable canonical realization
//
//	A = [[0, 1], [-wn², -2·zeta·wn]]  B = [[0], [wn²]]
//	C = [[1, 0]]                      D = [[0]]
//
// which has unity DC gain.
func (p Params) StateSpace() (StateSpace, error) {
	if err := p.Validate(); err != nil {
		return StateSpace{}, err
	}
	wn2 := p.Wn * p.Wn
	return StateSpace{
		a: linalg.New(2, 2, []float64{0, 1, -wn2, -2 * p.Zeta * p.Wn}),
		b: linalg.New(2, 1, []float64{0, wn2}),
		c: linalg.New(1, 2, []float64{1, 0}),
		d: linalg.New(1, 1, []float64{0}),
	}, nil
}

// StateSpace is a continuous single-input single-output realization
// (A n×n, B n×1, C 1×n, D 1×1). The zero value is not usable; build one with
// [NewStateSpace] or [Params.StateSpace]. Accessors return copies.
type StateSpace struct {
	a, b, c, d linalg.Matrix
}

// NewStateSpace validates dimensions and finiteness and copies the matrices.
func NewStateSpace(a, b, c, d [][]float64) (StateSpace, error) {
	am, err := linalg.FromRows(a)
	if err != nil {
		return StateSpace{}, invalidParam("state space", "A: %v", err)
	}
	bm, err := linalg.FromRows(b)
	if err != nil {
		return StateSpace{}, invalidParam("state space", "B: %v", err)
	}
	cm, err := linalg.FromRows(c)
	if err != nil {
		return StateSpace{}, invalidParam("state space", "C: %v", err)
	}
	dm, err := linalg.FromRows(d)
	if err != nil {
		return StateSpace{}, invalidParam("state space", "D: %v", err)
	}

	n, ac := am.Dims()
	if n == 0 || n != ac {
		return StateSpace{}, invalidParam("state space", "A must be square and non-empty, got %dx%d", n, ac)
	}
	if r, c := bm.Dims(); r != n || c != 1 {
		return StateSpace{}, invalidParam("state space", "B must be %dx1, got %dx%d", n, r, c)
	}
	if r, c := cm.Dims(); r != 1 || c != n {
		return StateSpace{}, invalidParam("state space", "C must be 1x%d, got %dx%d", n, r, c)
	}
	if r, c := dm.Dims(); r != 1 || c != 1 {
		return StateSpace{}, invalidParam("state space", "D must be 1x1, got %dx%d", r, c)
	}
	for name, m := range map[string]linalg.Matrix{"A": am, "B": bm, "C": cm, "D": dm} {
		if !m.IsFinite() {
			return StateSpace{}, invalidParam("state space", "%s contains NaN or Inf", name)
		}
	}

	return StateSpace{a: am, b: bm, c: cm, d: dm}, nil
}

func (s StateSpace) Order() int {
	n, _ := s.a.Dims()
	return n
}

func (s StateSpace) A() linalg.Matrix { return s.a.Clone() }
func (s StateSpace) B() linalg.Matrix { return s.b.Clone() }
func (s StateSpace) C() linalg.Matrix { return s.c.Clone() }
func (s StateSpace) D() linalg.Matrix { return s.d.Clone() }

// Model is an immutable plant descriptor: exactly one canonical
// representation (second-order parameters or raw matrices) together with the
// sample interval it will be discretized at.
type Model struct {
	params *Params
	ss     StateSpace
	dt     float64
}

// NewSecondOrder builds a model from natural frequency, damping ratio and
// sample interval.
func NewSecondOrder(wn, zeta, dt float64) (*Model, error) {
	if err := validateInterval(dt); err != nil {
		return nil, err
	}
	p := Params{Wn: wn, Zeta: zeta}
	ss, err := p.StateSpace()
	if err != nil {
		return nil, err
	}
	return &Model{params: &p, ss: ss, dt: dt}, nil
}

// NewModel builds a model from a raw state-space realization.
func NewModel(ss StateSpace, dt float64) (*Model, error) {
	if err := validateInterval(dt); err != nil {
		return nil, err
	}
	if ss.Order() == 0 {
		return nil, invalidParam("model", "empty state-space realization")
	}
	return &Model{ss: ss, dt: dt}, nil
}

// Params returns the second-order parameters when the model was built from
// them.
func (m *Model) Params() (Params, bool) {
	if m.params == nil {
		return Params{}, false
	}
	return *m.params, true
}

func (m *Model) StateSpace() StateSpace  { return m.ss }
func (m *Model) SampleInterval() float64 { return m.dt }

func (m *Model) Discretize() (*Discrete, error) {
	return Discretize(m.ss, m.dt)
}

func validateInterval(dt float64) error {
	if !finite(dt) || dt <= 0 {
		return invalidParam("model", "sample interval must be positive, got %v", dt)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
