package flatten

import (
	"fmt"
	"math"
	"sort"

	"github.com/neurogeom/retreg/geometry2D"
	"github.com/neurogeom/retreg/mesh"
)

type Method uint8

const (
	DistancePreserving Method = iota
	Conformal
	EqualArea
)

var methodNameMap = map[string]Method{
	"distance":            DistancePreserving,
	"distance-preserving": DistancePreserving,
	"conformal":           Conformal,
	"area":                EqualArea,
	"equal-area":          EqualArea,
}

func NewMethod(label string) Method {
	if m, ok := methodNameMap[label]; ok {
		return m
	}
	panic(fmt.Errorf("unknown flattening method %q", label))
}

func (m Method) Print() string {
	switch m {
	case Conformal:
		return "conformal"
	case EqualArea:
		return "equal-area"
	default:
		return "distance-preserving"
	}
}

/*
FlatMap is a planar parameterization of a mesh patch around a pole vertex.
The pole sits at the origin; every other vertex carries one (X,Y)
coordinate. Sign is the orientation every flattened face is required to
keep - a face whose planar orientation differs from Sign is folded.
*/
type FlatMap struct {
	Msh        *mesh.Mesh
	Pole       int
	X, Y       []float64
	Sign       int
	Energy     float64
	Iterations int
	Converged  bool
}

func (fm *FlatMap) Point(v int) geometry2D.Point {
	return geometry2D.NewPoint(fm.X[v], fm.Y[v])
}

// FoldCountDisplaced counts faces whose orientation flips (or collapses)
// once the displacement field (dx,dy) is added to the map. Pass nils to
// check the undisplaced map.
func (fm *FlatMap) FoldCountDisplaced(dx, dy []float64) (folds int) {
	at := func(v int) geometry2D.Point {
		if dx == nil {
			return fm.Point(v)
		}
		return geometry2D.NewPoint(fm.X[v]+dx[v], fm.Y[v]+dy[v])
	}
	for _, tri := range fm.Msh.EToV {
		if geometry2D.Orientation(at(tri[0]), at(tri[1]), at(tri[2])) != fm.Sign {
			folds++
		}
	}
	return
}

func (fm *FlatMap) FoldCount() int { return fm.FoldCountDisplaced(nil, nil) }

/*
Flattener produces a FlatMap by relaxing a geodesic-polar initial layout
toward minimal metric distortion. The distortion energy is the weighted sum
over mesh edges of the squared difference between the 3D edge length and
the flattened edge length; Method selects the edge weighting.
*/
type Flattener struct {
	Method        Method
	MaxIterations int
	Tolerance     float64
	Verbose       bool
}

func NewFlattener(method Method) (fl *Flattener) {
	fl = &Flattener{
		Method:        method,
		MaxIterations: 200,
		Tolerance:     1.e-6,
	}
	return
}

func (fl *Flattener) Flatten(msh *mesh.Mesh, pole int) (fm *FlatMap, err error) {
	if pole < 0 || pole >= msh.Nv {
		return nil, fmt.Errorf("pole vertex %d out of range, mesh has %d vertices", pole, msh.Nv)
	}
	dist := msh.GeodesicDistance(pole)
	var reached int
	for _, d := range dist {
		if !math.IsInf(d, 1) {
			reached++
		}
	}
	if reached < msh.Nv {
		return nil, &mesh.UnreachablePoleError{Pole: pole, NumReached: reached - 1, NumVerts: msh.Nv}
	}
	fm = &FlatMap{
		Msh:  msh,
		Pole: pole,
		X:    make([]float64, msh.Nv),
		Y:    make([]float64, msh.Nv),
		Sign: 1,
	}
	fl.initialLayout(fm, dist)
	fl.relax(fm)
	return
}

/*
initialLayout assigns radius = geodesic distance from the pole and an angle
propagated outward from a tangent-plane ordering of the pole's immediate
neighbors. Vertices are placed in order of increasing radius so every
vertex (except the pole's own ring) inherits its angle from already-placed
neighbors.
*/
func (fl *Flattener) initialLayout(fm *FlatMap, dist []float64) {
	var (
		msh    = fm.Msh
		order  = make([]int, msh.Nv)
		placed = make([]bool, msh.Nv)
	)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		vi, vj := order[i], order[j]
		if dist[vi] != dist[vj] {
			return dist[vi] < dist[vj]
		}
		return vi < vj
	})

	// Tangent-plane basis at the pole
	e1x, e1y, e1z, e2x, e2y, e2z := fl.tangentBasis(msh, fm.Pole)

	fm.X[fm.Pole], fm.Y[fm.Pole] = 0, 0
	placed[fm.Pole] = true
	for _, v := range order {
		if placed[v] {
			continue
		}
		var theta float64
		if contains(msh.Neighbors[fm.Pole], v) {
			// First ring: project the spoke onto the tangent plane
			px := msh.VX.AtVec(v) - msh.VX.AtVec(fm.Pole)
			py := msh.VY.AtVec(v) - msh.VY.AtVec(fm.Pole)
			pz := msh.VZ.AtVec(v) - msh.VZ.AtVec(fm.Pole)
			u := px*e1x + py*e1y + pz*e1z
			w := px*e2x + py*e2y + pz*e2z
			theta = math.Atan2(w, u)
		} else {
			// Mean direction of the already-placed neighbors
			var sx, sy float64
			var n int
			for _, nbr := range msh.Neighbors[v] {
				if placed[nbr] && nbr != fm.Pole {
					sx += fm.X[nbr]
					sy += fm.Y[nbr]
					n++
				}
			}
			if n > 0 && (sx != 0 || sy != 0) {
				theta = math.Atan2(sy, sx)
			}
		}
		fm.X[v] = dist[v] * math.Cos(theta)
		fm.Y[v] = dist[v] * math.Sin(theta)
		placed[v] = true
	}

	// Normalize the global winding so a positive orientation is the
	// expected one
	var pos, neg int
	for _, tri := range msh.EToV {
		switch geometry2D.Orientation(fm.Point(tri[0]), fm.Point(tri[1]), fm.Point(tri[2])) {
		case 1:
			pos++
		case -1:
			neg++
		}
	}
	if neg > pos {
		for v := range fm.Y {
			fm.Y[v] = -fm.Y[v]
		}
	}
}

func (fl *Flattener) tangentBasis(msh *mesh.Mesh, pole int) (e1x, e1y, e1z, e2x, e2y, e2z float64) {
	// Average the normals of the faces incident on the pole
	var nx, ny, nz float64
	for _, k := range msh.VertFaces[pole] {
		tri := msh.EToV[k]
		ax, ay, az := msh.VX.AtVec(tri[0]), msh.VY.AtVec(tri[0]), msh.VZ.AtVec(tri[0])
		ux := msh.VX.AtVec(tri[1]) - ax
		uy := msh.VY.AtVec(tri[1]) - ay
		uz := msh.VZ.AtVec(tri[1]) - az
		vx := msh.VX.AtVec(tri[2]) - ax
		vy := msh.VY.AtVec(tri[2]) - ay
		vz := msh.VZ.AtVec(tri[2]) - az
		cx, cy, cz := uy*vz-uz*vy, uz*vx-ux*vz, ux*vy-uy*vx
		// Flip to a consistent hemisphere before accumulating
		if cx*nx+cy*ny+cz*nz < 0 {
			cx, cy, cz = -cx, -cy, -cz
		}
		nx, ny, nz = nx+cx, ny+cy, nz+cz
	}
	nl := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if nl < 1.e-14 {
		nx, ny, nz = 0, 0, 1
	} else {
		nx, ny, nz = nx/nl, ny/nl, nz/nl
	}
	// e1: any direction orthogonal to the normal, seeded from the first
	// neighbor spoke for stability
	var sx, sy, sz float64 = 1, 0, 0
	if len(msh.Neighbors[pole]) > 0 {
		nbr := msh.Neighbors[pole][0]
		sx = msh.VX.AtVec(nbr) - msh.VX.AtVec(pole)
		sy = msh.VY.AtVec(nbr) - msh.VY.AtVec(pole)
		sz = msh.VZ.AtVec(nbr) - msh.VZ.AtVec(pole)
	}
	dot := sx*nx + sy*ny + sz*nz
	e1x, e1y, e1z = sx-dot*nx, sy-dot*ny, sz-dot*nz
	el := math.Sqrt(e1x*e1x + e1y*e1y + e1z*e1z)
	if el < 1.e-14 {
		// Spoke was parallel to the normal; fall back to a coordinate axis
		e1x, e1y, e1z = 1, 0, 0
		if math.Abs(nx) > 0.9 {
			e1x, e1y, e1z = 0, 1, 0
		}
		dot = e1x*nx + e1y*ny + e1z*nz
		e1x, e1y, e1z = e1x-dot*nx, e1y-dot*ny, e1z-dot*nz
		el = math.Sqrt(e1x*e1x + e1y*e1y + e1z*e1z)
	}
	e1x, e1y, e1z = e1x/el, e1y/el, e1z/el
	e2x = ny*e1z - nz*e1y
	e2y = nz*e1x - nx*e1z
	e2z = nx*e1y - ny*e1x
	return
}

func contains(sorted []int, v int) bool {
	i := sort.SearchInts(sorted, v)
	return i < len(sorted) && sorted[i] == v
}
