package linalg

import (
	"errors"
	"math"
)

var (
	// ErrNotFinite indicates a NaN or Inf in the input or the result.
	ErrNotFinite = errors.New("linalg: matrix contains NaN or Inf")

	// ErrNoConvergence indicates the exponential series did not converge
	// within the iteration budget.
	ErrNoConvergence = errors.New("linalg: matrix exponential did not converge")
)

const (
	expmMaxTerms     = 64
	expmMaxSquarings = 1000
	expmTolerance    = 1e-17
	expmScaledNorm   = 0.5
)

// Expm returns exp(a) for a square matrix using scaling and squaring with a
// truncated Taylor series.
//
// The matrix is scaled by 2^-s until its infinity norm is at most 0.5, the
// series is summed until a term no longer changes the sum at double
// precision, and the result is squared s times.
func Expm(a Matrix) (Matrix, error) {
	if a.rows != a.cols {
		panic("linalg: Expm of non-square matrix")
	}
	if !a.IsFinite() {
		return Matrix{}, ErrNotFinite
	}

	n := a.rows
	s := 0
	if norm := a.NormInf(); norm > expmScaledNorm {
		s = int(math.Ceil(math.Log2(norm / expmScaledNorm)))
	}
	if s > expmMaxSquarings {
		return Matrix{}, ErrNoConvergence
	}
	scaled := a.Scale(math.Ldexp(1, -s))

	sum := Identity(n)
	term := Identity(n)
	converged := false
	for k := 1; k <= expmMaxTerms; k++ {
		term = Mul(term, scaled).Scale(1 / float64(k))
		sum = Add(sum, term)
		if term.NormInf() <= expmTolerance*sum.NormInf() {
			converged = true
			break
		}
	}
	if !converged {
		return Matrix{}, ErrNoConvergence
	}

	for i := 0; i < s; i++ {
		sum = Mul(sum, sum)
	}
	if !sum.IsFinite() {
		return Matrix{}, ErrNotFinite
	}
	return sum, nil
}
