/*
Package meshgen builds synthetic triangulated surface patches with known
geometry. The generated meshes are used by the test suite and by the
meshgen CLI command to exercise the flattening and registration pipeline
without subject data.
*/
package meshgen

import (
	"math"

	"github.com/neurogeom/retreg/mesh"
	"github.com/neurogeom/retreg/utils"
)

/*
Disk builds a triangulated disk of the given radius centered on vertex 0,
with [rings] concentric rings of [sectors] vertices each. A nonzero bump
lifts the disk into a paraboloid cap of that height, which gives the
flattener a genuinely curved surface to work on. The face winding is
uniformly counter-clockwise seen from +z.
*/
func Disk(rings, sectors int, radius, bump float64) *mesh.Mesh {
	if rings < 1 || sectors < 3 {
		panic("disk needs at least 1 ring and 3 sectors")
	}
	var (
		nv = 1 + rings*sectors
		vx = make([]float64, nv)
		vy = make([]float64, nv)
		vz = make([]float64, nv)
	)
	height := func(rho float64) float64 {
		t := rho / radius
		return bump * (1 - t*t)
	}
	vz[0] = height(0)
	id := func(ring, sector int) int {
		return 1 + (ring-1)*sectors + (sector%sectors+sectors)%sectors
	}
	for r := 1; r <= rings; r++ {
		rho := radius * float64(r) / float64(rings)
		for s := 0; s < sectors; s++ {
			theta := 2 * math.Pi * float64(s) / float64(sectors)
			v := id(r, s)
			vx[v] = rho * math.Cos(theta)
			vy[v] = rho * math.Sin(theta)
			vz[v] = height(rho)
		}
	}
	var faces []float64
	addFace := func(a, b, c int) {
		faces = append(faces, float64(a), float64(b), float64(c))
	}
	// Central fan
	for s := 0; s < sectors; s++ {
		addFace(0, id(1, s), id(1, s+1))
	}
	// Quad strips between rings, each quad split into two triangles
	for r := 1; r < rings; r++ {
		for s := 0; s < sectors; s++ {
			a, b := id(r, s), id(r, s+1)
			c, d := id(r+1, s), id(r+1, s+1)
			addFace(a, c, d)
			addFace(a, d, b)
		}
	}
	msh, err := mesh.New(utils.NewVector(nv, vx), utils.NewVector(nv, vy),
		utils.NewVector(nv, vz), utils.NewMatrix(len(faces)/3, 3, faces))
	if err != nil {
		panic(err) // Structured construction cannot produce a bad mesh
	}
	return msh
}
