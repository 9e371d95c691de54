package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum returns the one-sided magnitude spectrum of values sampled every
// dt seconds, with the mean removed. freqs are in Hz.
func Spectrum(values []float64, dt float64) (freqs, mags []float64) {
	n := len(values)
	if n < 2 || dt <= 0 {
		return nil, nil
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range values {
		centered[i] = v - mean
	}

	bins := fft.FFTReal(centered)
	half := n/2 + 1
	freqs = make([]float64, half)
	mags = make([]float64, half)
	for k := range half {
		freqs[k] = float64(k) / (float64(n) * dt)
		mags[k] = cmplx.Abs(bins[k])
	}
	return freqs, mags
}

// DominantFrequency is the frequency in Hz of the largest non-DC bin, or NaN
// when the signal is too short or flat.
func DominantFrequency(values []float64, dt float64) float64 {
	freqs, mags := Spectrum(values, dt)
	best, peak := -1, 0.0
	for k := 1; k < len(mags); k++ {
		if mags[k] > peak {
			best, peak = k, mags[k]
		}
	}
	if best < 0 {
		return math.NaN()
	}
	return freqs[best]
}

// EstimateDamping estimates ζ from the positive local maxima of a decaying
// oscillation about zero using the logarithmic decrement
// δ = ln(p₀/pₙ)/n and ζ = δ/√(4π²+δ²). It returns NaN when fewer than two
// peaks are found.
func EstimateDamping(values []float64) float64 {
	var peaks []float64
	for i := 1; i+1 < len(values); i++ {
		v := values[i]
		if v > 0 && v > values[i-1] && v >= values[i+1] {
			peaks = append(peaks, v)
		}
	}
	if len(peaks) < 2 {
		return math.NaN()
	}
	n := float64(len(peaks) - 1)
	delta := math.Log(peaks[0]/peaks[len(peaks)-1]) / n
	return delta / math.Sqrt(4*math.Pi*math.Pi+delta*delta)
}
