package readfiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurogeom/retreg/mesh"
	"github.com/neurogeom/retreg/meshgen"
	"github.com/neurogeom/retreg/register"
	"github.com/neurogeom/retreg/types"
)

func TestReadOFF(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "square.off")
	contents := `OFF
# a unit square split into two triangles
4 2 0
0 0 0
1 0 0
1 1 0
0 1 0
3 0 1 2
3 0 2 3
`
	require.NoError(t, os.WriteFile(fname, []byte(contents), 0644))

	VX, VY, VZ, EToV, err := ReadOFF(fname)
	require.NoError(t, err)
	msh, err := mesh.New(VX, VY, VZ, EToV)
	require.NoError(t, err)
	assert.Equal(t, 4, msh.Nv)
	assert.Equal(t, 2, msh.Nf)
	assert.Equal(t, 1., VX.AtVec(1))
	assert.Equal(t, 1., VY.AtVec(2))
	assert.Equal(t, 0., VZ.AtVec(3))
	assert.Equal(t, [3]int{0, 2, 3}, msh.EToV[1])
}

func TestReadOFFErrors(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name, contents string
	}{
		{"empty", ""},
		{"badCounts", "OFF\n2 0 0\n"},
		{"truncatedVertices", "3 1 0\n0 0 0\n1 0 0\n"},
		{"quadFace", "OFF\n4 1 0\n0 0 0\n1 0 0\n1 1 0\n0 1 0\n4 0 1 2 3\n"},
		{"badVertexRef", "OFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1 9\n"},
	}
	for _, c := range cases {
		fname := filepath.Join(dir, c.name+".off")
		require.NoError(t, os.WriteFile(fname, []byte(c.contents), 0644))
		_, _, _, _, err := ReadOFF(fname)
		assert.Error(t, err, c.name)
	}
	_, _, _, _, err := ReadOFF(filepath.Join(dir, "does-not-exist.off"))
	assert.Error(t, err)
}

func TestWriteOFFRoundTrip(t *testing.T) {
	msh := meshgen.Disk(3, 8, 5, 1)
	fname := filepath.Join(t.TempDir(), "disk.off")
	require.NoError(t, WriteOFF(fname, msh))

	VX, VY, VZ, EToV, err := ReadOFF(fname)
	require.NoError(t, err)
	back, err := mesh.New(VX, VY, VZ, EToV)
	require.NoError(t, err)
	require.Equal(t, msh.Nv, back.Nv)
	require.Equal(t, msh.Nf, back.Nf)
	for v := 0; v < msh.Nv; v++ {
		assert.InDelta(t, msh.VX.AtVec(v), back.VX.AtVec(v), 1.e-9)
		assert.InDelta(t, msh.VY.AtVec(v), back.VY.AtVec(v), 1.e-9)
		assert.InDelta(t, msh.VZ.AtVec(v), back.VZ.AtVec(v), 1.e-9)
	}
	assert.Equal(t, msh.EToV, back.EToV)
}

func TestReadObservations(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "obs.txt")
	contents := `# vertex theta rho weight
0 90 0.5 1.0
5 45 3.25 0.75

12 170 20 0.1  # low confidence
`
	require.NoError(t, os.WriteFile(fname, []byte(contents), 0644))

	obs, err := ReadObservations(fname)
	require.NoError(t, err)
	assert.Len(t, obs, 3)
	assert.Equal(t, register.Observation{PolarAngle: 45, Eccentricity: 3.25, Weight: 0.75}, obs[5])
	assert.Equal(t, []int{0, 5, 12}, obs.SortedIDs())
}

func TestReadObservationsErrors(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name, contents string
	}{
		{"shortLine", "0 90 0.5\n"},
		{"notANumber", "0 ninety 0.5 1\n"},
		{"negativeVertex", "-3 90 0.5 1\n"},
		{"duplicate", "4 90 0.5 1\n4 80 0.4 1\n"},
	}
	for _, c := range cases {
		fname := filepath.Join(dir, c.name+".txt")
		require.NoError(t, os.WriteFile(fname, []byte(c.contents), 0644))
		_, err := ReadObservations(fname)
		assert.Error(t, err, c.name)
	}
}

func TestWriteRetinotopyMap(t *testing.T) {
	msh := meshgen.Disk(2, 6, 3, 0)
	rm := &register.RetinotopyMap{
		PolarAngle:   make([]float64, msh.Nv),
		Eccentricity: make([]float64, msh.Nv),
		Area:         make([]types.VisualArea, msh.Nv),
		FitQuality:   make([]float64, msh.Nv),
		Deformation:  register.NewDeformationField(msh.Nv),
		Energy:       1.5,
		Iterations:   3,
	}
	for v := 0; v < msh.Nv; v++ {
		rm.PolarAngle[v] = float64(v * 10)
		rm.Eccentricity[v] = float64(v)
		rm.Area[v] = types.V1
		rm.FitQuality[v] = 0.5
	}
	rm.Flags.BoundaryInconsistency = true

	fname := filepath.Join(t.TempDir(), "map.txt")
	require.NoError(t, WriteRetinotopyMap(fname, msh, rm))

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# flag: area boundary ordering inconsistent")
	assert.Contains(t, text, "1 10.000000 1.000000 V1 0.5000")
	assert.NotContains(t, text, "flattening")
}
