// Package analysis characterizes recorded plant responses.
//
//   - [Spectrum]: magnitude spectrum of a uniformly sampled signal
//   - [DominantFrequency]: strongest non-DC frequency component
//   - [EstimateDamping]: damping ratio from the logarithmic decrement of
//     successive peaks
//   - [PhasePortrait]: state-space trajectory of a simulator
//
// # Identifying a Plant
//
// For the free or impulse response of an underdamped plant the dominant
// frequency is the damped frequency ωd = ωn·√(1−ζ²), so the two estimates
// together recover ωn:
//
//	fd := analysis.DominantFrequency(t.Output, dt)
//	zeta := analysis.EstimateDamping(t.Output)
//	wn := 2 * math.Pi * fd / math.Sqrt(1-zeta*zeta)
package analysis
