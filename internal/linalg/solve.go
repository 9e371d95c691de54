package linalg

import (
	"errors"
	"math"
)

// ErrSingular indicates a linear system with no unique solution.
var ErrSingular = errors.New("linalg: matrix is singular")

// Solve returns x with a·x = b using Gaussian elimination with partial
// pivoting. b may have several columns.
func Solve(a, b Matrix) (Matrix, error) {
	if a.rows != a.cols || a.rows != b.rows {
		panic("linalg: Solve dimension mismatch")
	}
	n := a.rows
	lu := a.Clone()
	x := b.Clone()

	scale := lu.NormInf()
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(lu.At(r, col)) > math.Abs(lu.At(pivot, col)) {
				pivot = r
			}
		}
		if math.Abs(lu.At(pivot, col)) <= 1e-14*scale {
			return Matrix{}, ErrSingular
		}
		if pivot != col {
			lu.swapRows(pivot, col)
			x.swapRows(pivot, col)
		}
		p := lu.At(col, col)
		for r := col + 1; r < n; r++ {
			f := lu.At(r, col) / p
			if f == 0 {
				continue
			}
			for c := col; c < n; c++ {
				lu.Set(r, c, lu.At(r, c)-f*lu.At(col, c))
			}
			for c := 0; c < x.cols; c++ {
				x.Set(r, c, x.At(r, c)-f*x.At(col, c))
			}
		}
	}

	for col := n - 1; col >= 0; col-- {
		p := lu.At(col, col)
		for c := 0; c < x.cols; c++ {
			sum := x.At(col, c)
			for k := col + 1; k < n; k++ {
				sum -= lu.At(col, k) * x.At(k, c)
			}
			x.Set(col, c, sum/p)
		}
	}
	return x, nil
}

func (m Matrix) swapRows(i, j int) {
	for c := 0; c < m.cols; c++ {
		m.data[i*m.cols+c], m.data[j*m.cols+c] = m.data[j*m.cols+c], m.data[i*m.cols+c]
	}
}
