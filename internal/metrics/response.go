package metrics

import (
	"math"

	"github.com/san-kum/plantsim/internal/trajectory"
)

type FinalValue struct {
	last float64
	seen bool
}

func NewFinalValue() *FinalValue { return &FinalValue{} }

func (f *FinalValue) Name() string { return "final_value" }

func (f *FinalValue) Observe(s trajectory.Sample) {
	f.last = s.Output
	f.seen = true
}

func (f *FinalValue) Value() float64 {
	if !f.seen {
		return math.NaN()
	}
	return f.last
}

func (f *FinalValue) Reset() { *f = FinalValue{} }

// Overshoot is the peak excursion past the target in percent of the target.
// For a zero target it is the absolute peak output.
type Overshoot struct {
	target float64
	peak   float64
	seen   bool
}

func NewOvershoot(target float64) *Overshoot {
	return &Overshoot{target: target}
}

func (o *Overshoot) Name() string { return "overshoot_pct" }

func (o *Overshoot) Observe(s trajectory.Sample) {
	v := s.Output
	if o.target < 0 {
		v = -v
	}
	if o.target == 0 {
		v = math.Abs(v)
	}
	if !o.seen || v > o.peak {
		o.peak = v
		o.seen = true
	}
}

func (o *Overshoot) Value() float64 {
	if !o.seen {
		return 0
	}
	if o.target == 0 {
		return o.peak
	}
	ref := math.Abs(o.target)
	return math.Max(0, (o.peak-ref)/ref*100)
}

func (o *Overshoot) Reset() {
	o.peak = 0
	o.seen = false
}

// RiseTime is the time taken to go from 10% to 90% of the target. It is NaN
// until the output has reached 90%.
type RiseTime struct {
	target   float64
	low      float64
	high     float64
	haveLow  bool
	haveHigh bool
}

func NewRiseTime(target float64) *RiseTime {
	return &RiseTime{target: target}
}

func (r *RiseTime) Name() string { return "rise_time" }

func (r *RiseTime) Observe(s trajectory.Sample) {
	if r.target == 0 || r.haveHigh {
		return
	}
	frac := s.Output / r.target
	if !r.haveLow && frac >= 0.1 {
		r.low, r.haveLow = s.Time, true
	}
	if frac >= 0.9 {
		r.high, r.haveHigh = s.Time, true
	}
}

func (r *RiseTime) Value() float64 {
	if !r.haveLow || !r.haveHigh {
		return math.NaN()
	}
	return r.high - r.low
}

func (r *RiseTime) Reset() {
	r.haveLow, r.haveHigh = false, false
	r.low, r.high = 0, 0
}

// SettlingTime is the time of the first sample after which the output stays
// within band·|target| of the target. NaN while the last sample is outside.
type SettlingTime struct {
	target  float64
	band    float64
	settled float64
	inside  bool
}

func NewSettlingTime(target, band float64) *SettlingTime {
	return &SettlingTime{target: target, band: band}
}

func (st *SettlingTime) Name() string { return "settling_time" }

func (st *SettlingTime) Observe(s trajectory.Sample) {
	tol := st.band * math.Abs(st.target)
	if st.target == 0 {
		tol = st.band
	}
	if math.Abs(s.Output-st.target) <= tol {
		if !st.inside {
			st.settled = s.Time
			st.inside = true
		}
		return
	}
	st.inside = false
}

func (st *SettlingTime) Value() float64 {
	if !st.inside {
		return math.NaN()
	}
	return st.settled
}

func (st *SettlingTime) Reset() {
	st.settled = 0
	st.inside = false
}
