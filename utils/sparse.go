package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

type DOK struct {
	M *sparse.DOK
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{sparse.NewDOK(nr, nc)}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

func (m DOK) Set(i, j int, val float64) DOK { // Changes receiver
	m.M.Set(i, j, val)
	return m
}

func (m DOK) Add(i, j int, val float64) DOK { // Changes receiver
	m.M.Set(i, j, m.M.At(i, j)+val)
	return m
}

func (m DOK) ToCSR() (R CSR) {
	R = CSR{m.M.ToCSR()}
	return
}

type CSR struct {
	M *sparse.CSR
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix       { return m.M.T() }

// MulVecTo computes dst = M * x without allocating intermediate storage,
// visiting only the stored non-zeros.
func (m CSR) MulVecTo(dst, x []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(dst) != nr || len(x) != nc {
		panic(fmt.Errorf("dimension mismatch in MulVecTo: M is %dx%d, dst %d, x %d",
			nr, nc, len(dst), len(x)))
	}
	for i := 0; i < nr; i++ {
		dst[i] = 0
		m.M.DoRowNonZero(i, func(_, j int, v float64) {
			dst[i] += v * x[j]
		})
	}
}

// QuadraticForm computes x^T M x, used for evaluating Laplacian smoothness
// energies.
func (m CSR) QuadraticForm(x []float64) (e float64) {
	var (
		nr, _ = m.Dims()
	)
	for i := 0; i < nr; i++ {
		m.M.DoRowNonZero(i, func(_, j int, v float64) {
			e += x[i] * v * x[j]
		})
	}
	return
}
