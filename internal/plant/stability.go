package plant

import (
	"math"

	"github.com/san-kum/plantsim/internal/linalg"
)

// SpectralRadius returns the largest pole magnitude of Ad. Orders one and two
// use closed-form eigenvalues; higher orders use Gelfand's formula
// ρ = lim ‖Ad^k‖^(1/k) evaluated by repeated squaring.
func (d *Discrete) SpectralRadius() float64 {
	a := d.ad
	switch d.Order() {
	case 1:
		return math.Abs(a.At(0, 0))
	case 2:
		tr := a.At(0, 0) + a.At(1, 1)
		det := a.At(0, 0)*a.At(1, 1) - a.At(0, 1)*a.At(1, 0)
		disc := tr*tr/4 - det
		if disc < 0 {
			return math.Sqrt(det)
		}
		root := math.Sqrt(disc)
		return math.Max(math.Abs(tr/2+root), math.Abs(tr/2-root))
	}
	return gelfandRadius(a)
}

// Stable reports whether every pole of Ad lies strictly inside the unit
// circle.
func (d *Discrete) Stable() bool {
	return d.SpectralRadius() < 1
}

func gelfandRadius(a linalg.Matrix) float64 {
	const squarings = 48

	norm := a.NormInf()
	if norm == 0 {
		return 0
	}
	m := a.Scale(1 / norm)
	logNorm := math.Log(norm)
	for k := 1; k <= squarings; k++ {
		m = linalg.Mul(m, m)
		n := m.NormInf()
		if n == 0 {
			return 0
		}
		m = m.Scale(1 / n)
		logNorm = 2*logNorm + math.Log(n)
	}
	return math.Exp(logNorm / math.Ldexp(1, squarings))
}
