package trajectory

import "math"

// Profile is a pure forcing function of sample index k and time t.
type Profile interface {
	Value(k int, t float64) float64
}

// ProfileFunc adapts an ordinary function to Profile.
type ProfileFunc func(k int, t float64) float64

func (f ProfileFunc) Value(k int, t float64) float64 { return f(k, t) }

// Step is a Heaviside step of the given amplitude switching on at Delay.
type Step struct {
	Amplitude float64
	Delay     float64
}

func (s Step) Value(_ int, t float64) float64 {
	if t >= s.Delay-1e-9*math.Max(1, math.Abs(s.Delay)) {
		return s.Amplitude
	}
	return 0
}

// Sine is Offset + Amplitude·sin(2π·Frequency·t + Phase), Frequency in Hz.
type Sine struct {
	Amplitude float64
	Frequency float64
	Phase     float64
	Offset    float64
}

func (s Sine) Value(_ int, t float64) float64 {
	return s.Offset + s.Amplitude*math.Sin(2*math.Pi*s.Frequency*t+s.Phase)
}

// Impulse is a single sample of height Amplitude at k = 0.
type Impulse struct {
	Amplitude float64
}

func (i Impulse) Value(k int, _ float64) float64 {
	if k == 0 {
		return i.Amplitude
	}
	return 0
}

// Ramp is Slope·t.
type Ramp struct {
	Slope float64
}

func (r Ramp) Value(_ int, t float64) float64 {
	return r.Slope * t
}

// Sequence replays explicit samples and is zero past its end.
type Sequence struct {
	Values []float64
}

func (s Sequence) Value(k int, _ float64) float64 {
	if k < 0 || k >= len(s.Values) {
		return 0
	}
	return s.Values[k]
}

// Zero is the unforced profile.
type Zero struct{}

func (Zero) Value(int, float64) float64 { return 0 }
