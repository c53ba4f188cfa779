package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrix(t *testing.T) {
	// Construction and raw data layout
	{
		M := NewMatrix(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		nr, nc := M.Dims()
		assert.Equal(t, 2, nr)
		assert.Equal(t, 3, nc)
		assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, M.Data())
	}
	// SliceRows
	{
		M := NewMatrix(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		I := Index{1, 0}
		A := M.SliceRows(I)
		assert.Equal(t, NewMatrix(2, 3, []float64{
			4, 5, 6,
			1, 2, 3,
		}), A)
	}
	// Row / Col extraction
	{
		M := NewMatrix(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		assert.Equal(t, []float64{4, 5, 6}, M.Row(1).Data())
		assert.Equal(t, []float64{2, 5}, M.Col(1).Data())
	}
}

func TestVector(t *testing.T) {
	V := NewVector(4, []float64{3, -1, 2, 7})
	assert.Equal(t, 4, V.Len())
	assert.Equal(t, -1., V.Min())
	assert.Equal(t, 7., V.Max())
	assert.Equal(t, []float64{-1, 7}, V.Subset(Index{1, 3}).Data())
	W := V.Copy()
	W.Set(0, 100)
	assert.Equal(t, 3., V.AtVec(0))
}

func TestPartitionMap(t *testing.T) {
	pm := NewPartitionMap(4, 10)
	// Buckets tile the full range with no gaps or overlap
	var covered int
	for n := 0; n < pm.ParallelDegree; n++ {
		min, max := pm.GetBucketRange(n)
		assert.Equal(t, covered, min)
		assert.Equal(t, max-min, pm.GetBucketDimension(n))
		covered = max
	}
	assert.Equal(t, 10, covered)
	// Degenerate case: more workers than work
	pm = NewPartitionMap(16, 3)
	assert.Equal(t, 3, pm.ParallelDegree)
}

func TestSparse(t *testing.T) {
	// Graph Laplacian of a path on 3 vertices
	L := NewDOK(3, 3)
	L.Set(0, 0, 1).Set(1, 1, 2).Set(2, 2, 1)
	L.Set(0, 1, -1).Set(1, 0, -1)
	L.Set(1, 2, -1).Set(2, 1, -1)
	R := L.ToCSR()

	x := []float64{1, 2, 4}
	y := make([]float64, 3)
	R.MulVecTo(y, x)
	assert.InDeltaSlice(t, []float64{-1, -1, 2}, y, 1.e-12)

	// x^T L x = sum over edges of (x_i - x_j)^2 = 1 + 4
	assert.InDelta(t, 5., R.QuadraticForm(x), 1.e-12)

	// Constant vectors lie in the null space
	c := []float64{3, 3, 3}
	R.MulVecTo(y, c)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, y, 1.e-12)
}
