// Package linalg provides the small set of dense linear-algebra routines the
// plant model needs: matrix products, norms and the matrix exponential.
//
// Plants in this project are low order (typically 2), so the routines favour
// clarity and bit-for-bit determinism over blocking or vectorisation. Matrices
// are stored row-major and every operation returns a fresh value; nothing is
// mutated in place except through [Matrix.Set].
package linalg

import (
	"fmt"
	"math"
	"strings"
)

// Matrix is a dense row-major matrix of float64.
type Matrix struct {
	rows, cols int
	data       []float64
}

// New returns an r×c matrix backed by a copy of data. A nil data slice
// yields the zero matrix. It panics when len(data) does not match r*c.
func New(r, c int, data []float64) Matrix {
	if r < 0 || c < 0 {
		panic("linalg: negative dimension")
	}
	m := Matrix{rows: r, cols: c, data: make([]float64, r*c)}
	if data != nil {
		if len(data) != r*c {
			panic(fmt.Sprintf("linalg: data length %d does not match %dx%d", len(data), r, c))
		}
		copy(m.data, data)
	}
	return m
}

// FromRows builds a matrix from a slice of equal-length rows.
func FromRows(rows [][]float64) (Matrix, error) {
	if len(rows) == 0 {
		return Matrix{}, nil
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for i, row := range rows {
		if len(row) != c {
			return Matrix{}, fmt.Errorf("linalg: row %d has %d columns, want %d", i, len(row), c)
		}
		data = append(data, row...)
	}
	return New(len(rows), c, data), nil
}

// Identity returns the n×n identity matrix.
func Identity(n int) Matrix {
	m := New(n, n, nil)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

func (m Matrix) Dims() (r, c int) { return m.rows, m.cols }

func (m Matrix) At(i, j int) float64 {
	m.check(i, j)
	return m.data[i*m.cols+j]
}

func (m Matrix) Set(i, j int, v float64) {
	m.check(i, j)
	m.data[i*m.cols+j] = v
}

func (m Matrix) check(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("linalg: index (%d,%d) out of range for %dx%d", i, j, m.rows, m.cols))
	}
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	return New(m.rows, m.cols, m.data)
}

// Rows returns the matrix contents as freshly allocated rows.
func (m Matrix) Rows() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = make([]float64, m.cols)
		copy(out[i], m.data[i*m.cols:(i+1)*m.cols])
	}
	return out
}

// Slice returns the sub-matrix of rows [i0,i1) and columns [j0,j1) as a copy.
func (m Matrix) Slice(i0, i1, j0, j1 int) Matrix {
	if i0 < 0 || i1 > m.rows || j0 < 0 || j1 > m.cols || i0 > i1 || j0 > j1 {
		panic("linalg: slice out of range")
	}
	out := New(i1-i0, j1-j0, nil)
	for i := i0; i < i1; i++ {
		for j := j0; j < j1; j++ {
			out.data[(i-i0)*out.cols+(j-j0)] = m.data[i*m.cols+j]
		}
	}
	return out
}

// Mul returns the product a·b.
func Mul(a, b Matrix) Matrix {
	if a.cols != b.rows {
		panic(fmt.Sprintf("linalg: dimension mismatch %dx%d * %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
	out := New(a.rows, b.cols, nil)
	for i := 0; i < a.rows; i++ {
		for k := 0; k < a.cols; k++ {
			aik := a.data[i*a.cols+k]
			if aik == 0 {
				continue
			}
			for j := 0; j < b.cols; j++ {
				out.data[i*out.cols+j] += aik * b.data[k*b.cols+j]
			}
		}
	}
	return out
}

// Add returns a+b.
func Add(a, b Matrix) Matrix {
	if a.rows != b.rows || a.cols != b.cols {
		panic(fmt.Sprintf("linalg: dimension mismatch %dx%d + %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
	out := New(a.rows, a.cols, nil)
	for i := range a.data {
		out.data[i] = a.data[i] + b.data[i]
	}
	return out
}

// Scale returns f·m.
func (m Matrix) Scale(f float64) Matrix {
	out := New(m.rows, m.cols, nil)
	for i, v := range m.data {
		out.data[i] = v * f
	}
	return out
}

// MulVec returns m·x.
func (m Matrix) MulVec(x []float64) []float64 {
	if len(x) != m.cols {
		panic(fmt.Sprintf("linalg: vector length %d does not match %d columns", len(x), m.cols))
	}
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		sum := 0.0
		row := m.data[i*m.cols : (i+1)*m.cols]
		for j, v := range row {
			sum += v * x[j]
		}
		out[i] = sum
	}
	return out
}

// NormInf returns the maximum absolute row sum.
func (m Matrix) NormInf() float64 {
	norm := 0.0
	for i := 0; i < m.rows; i++ {
		sum := 0.0
		for _, v := range m.data[i*m.cols : (i+1)*m.cols] {
			sum += math.Abs(v)
		}
		if sum > norm || math.IsNaN(sum) {
			norm = sum
		}
	}
	return norm
}

// IsFinite reports whether every element is neither NaN nor ±Inf.
func (m Matrix) IsFinite() bool {
	for _, v := range m.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Equal reports element-wise equality within tol.
func (m Matrix) Equal(o Matrix, tol float64) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if math.Abs(m.data[i]-o.data[i]) > tol {
			return false
		}
	}
	return true
}

func (m Matrix) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%g", m.data[i*m.cols+j])
		}
	}
	b.WriteByte(']')
	return b.String()
}

// Dot returns the inner product of two equal-length vectors.
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		panic("linalg: vector length mismatch")
	}
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
