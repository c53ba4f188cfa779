package mesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurogeom/retreg/utils"
)

func buildMesh(t *testing.T, vx, vy, vz []float64, faces []float64) *Mesh {
	t.Helper()
	nv := len(vx)
	msh, err := New(utils.NewVector(nv, vx), utils.NewVector(nv, vy),
		utils.NewVector(nv, vz), utils.NewMatrix(len(faces)/3, 3, faces))
	require.NoError(t, err)
	return msh
}

func TestMeshAdjacency(t *testing.T) {
	// Two unit right triangles sharing the diagonal edge 1-2
	msh := buildMesh(t,
		[]float64{0, 1, 0, 1},
		[]float64{0, 0, 1, 1},
		[]float64{0, 0, 0, 0},
		[]float64{
			0, 1, 2,
			1, 3, 2,
		})
	assert.Equal(t, 4, msh.Nv)
	assert.Equal(t, 2, msh.Nf)
	assert.Equal(t, []int{1, 2}, msh.Neighbors[0])
	assert.Equal(t, []int{0, 2, 3}, msh.Neighbors[1])
	// Every vertex lies on a boundary edge in this patch
	for v := 0; v < msh.Nv; v++ {
		assert.True(t, msh.IsBoundary[v])
	}
	assert.InDelta(t, 1., msh.EdgeLength(0, 1), 1.e-14)
	assert.InDelta(t, math.Sqrt2, msh.EdgeLength(1, 2), 1.e-14)
}

func TestNonManifoldMesh(t *testing.T) {
	// Three faces share edge 0-1
	nv := 5
	vx := []float64{0, 1, 0, 0, 1}
	vy := []float64{0, 0, 1, -1, 1}
	vz := make([]float64, nv)
	_, err := New(utils.NewVector(nv, vx), utils.NewVector(nv, vy),
		utils.NewVector(nv, vz), utils.NewMatrix(3, 3, []float64{
			0, 1, 2,
			0, 1, 3,
			0, 1, 4,
		}))
	require.Error(t, err)
	var mie *MeshIntegrityError
	require.ErrorAs(t, err, &mie)
	assert.Equal(t, [2]int{0, 1}, mie.Edge)
	assert.Equal(t, 3, mie.Count)
}

func TestDegenerateFace(t *testing.T) {
	nv := 3
	_, err := New(utils.NewVector(nv, []float64{0, 1, 0}),
		utils.NewVector(nv, []float64{0, 0, 1}),
		utils.NewVector(nv, make([]float64, nv)),
		utils.NewMatrix(1, 3, []float64{0, 1, 1}))
	var mie *MeshIntegrityError
	require.ErrorAs(t, err, &mie)
}

func TestGeodesicDistance(t *testing.T) {
	// Strip of unit triangles along the x axis
	msh := buildMesh(t,
		[]float64{0, 1, 0, 1, 2, 2},
		[]float64{0, 0, 1, 1, 0, 1},
		[]float64{0, 0, 0, 0, 0, 0},
		[]float64{
			0, 1, 2,
			1, 3, 2,
			1, 4, 3,
			4, 5, 3,
		})
	dist := msh.GeodesicDistance(0)
	assert.InDelta(t, 0., dist[0], 1.e-14)
	assert.InDelta(t, 1., dist[1], 1.e-14)
	assert.InDelta(t, 2., dist[4], 1.e-14)
	// Path 0-1-3-5 or 0-2-3-5: length 1 + sqrt(2) + 1
	assert.InDelta(t, 2.+math.Sqrt2, dist[5], 1.e-14)
	assert.InDelta(t, dist[3], msh.Distance(0, 3), 1.e-14)
}

func TestSubmeshWithin(t *testing.T) {
	// Two disconnected triangles
	msh := buildMesh(t,
		[]float64{0, 1, 0, 10, 11, 10},
		[]float64{0, 0, 1, 0, 0, 1},
		[]float64{0, 0, 0, 0, 0, 0},
		[]float64{
			0, 1, 2,
			3, 4, 5,
		})
	dist := msh.GeodesicDistance(0)
	assert.True(t, math.IsInf(dist[3], 1))

	sub, err := msh.SubmeshWithin(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, sub.Nv)
	assert.Equal(t, 1, sub.Nf)
	assert.Equal(t, utils.Index{0, 1, 2}, sub.ParentIDs)
	assert.Equal(t, 1, sub.LocalID(1))
	assert.Equal(t, -1, sub.LocalID(4))

	// Radius bound trims the far vertices of a connected strip
	strip := buildMesh(t,
		[]float64{0, 1, 0, 1, 5, 5},
		[]float64{0, 0, 1, 1, 0, 1},
		[]float64{0, 0, 0, 0, 0, 0},
		[]float64{
			0, 1, 2,
			1, 3, 2,
			1, 4, 3,
			4, 5, 3,
		})
	sub, err = strip.SubmeshWithin(0, 2.)
	require.NoError(t, err)
	assert.Equal(t, 4, sub.Nv)

	// Pole out of range
	_, err = msh.SubmeshWithin(99, 0)
	var upe *UnreachablePoleError
	require.ErrorAs(t, err, &upe)
}
