package flatten

import (
	"fmt"
	"math"

	"github.com/neurogeom/retreg/geometry2D"
	"github.com/neurogeom/retreg/types"
)

const (
	vertexStepRetries = 8
	minSweepStep      = 1.e-12
)

type edgeTerm struct {
	V1, V2 int
	L      float64 // Rest length: the 3D edge length
	W      float64 // Method-dependent weight
}

func (fl *Flattener) edgeTerms(fm *FlatMap) (terms []edgeTerm) {
	var (
		msh   = fm.Msh
		edges = msh.Edges()
	)
	terms = make([]edgeTerm, len(edges))
	var meanArea float64
	if fl.Method == EqualArea {
		var total float64
		for _, tri := range msh.EToV {
			total += faceArea3D(fm, tri)
		}
		meanArea = total / float64(msh.Nf)
		if meanArea <= 0 {
			meanArea = 1
		}
	}
	for i, e := range edges {
		t := edgeTerm{V1: e[0], V2: e[1], L: msh.EdgeLength(e[0], e[1]), W: 1}
		switch fl.Method {
		case Conformal:
			// Cotangent weights from the one or two faces bordering the edge
			var w float64
			for _, opp := range msh.OppositeVertices(e[0], e[1]) {
				w += cot3D(fm, opp, e[0], e[1])
			}
			t.W = math.Max(w/2, 1.e-3)
		case EqualArea:
			// Weight edges of large faces down so their lengths may trade
			// off against the small ones
			var a float64
			for _, k := range msh.EdgeFaces[types.NewEdgeKey(e)] {
				a += faceArea3D(fm, msh.EToV[k])
			}
			t.W = meanArea / math.Max(a, 1.e-12)
		}
		terms[i] = t
	}
	return
}

func distortionEnergy(fm *FlatMap, terms []edgeTerm) (e float64) {
	for _, t := range terms {
		d := geometry2D.Distance(fm.Point(t.V1), fm.Point(t.V2)) - t.L
		e += t.W * d * d
	}
	return
}

/*
relax runs damped Gauss-Seidel sweeps over the vertices, pulling each
flattened edge toward its 3D rest length. A vertex move that would flip the
orientation of any incident face is halved until it fits, and a whole sweep
that raises the distortion energy is reverted with the global step halved,
so the energy is non-increasing across iterations by construction.
*/
func (fl *Flattener) relax(fm *FlatMap) {
	var (
		msh       = fm.Msh
		terms     = fl.edgeTerms(fm)
		vertTerms = make([][]int, msh.Nv)
		step      = 0.5
	)
	for i, t := range terms {
		vertTerms[t.V1] = append(vertTerms[t.V1], i)
		vertTerms[t.V2] = append(vertTerms[t.V2], i)
	}
	fm.Energy = distortionEnergy(fm, terms)
	var (
		xPrev = make([]float64, msh.Nv)
		yPrev = make([]float64, msh.Nv)
	)
	for iter := 0; iter < fl.MaxIterations; iter++ {
		copy(xPrev, fm.X)
		copy(yPrev, fm.Y)
		for v := 0; v < msh.Nv; v++ {
			if v == fm.Pole {
				continue
			}
			fl.moveVertex(fm, v, terms, vertTerms[v], step)
		}
		eNew := distortionEnergy(fm, terms)
		fm.Iterations = iter + 1
		if eNew > fm.Energy {
			// Revert the sweep and damp
			copy(fm.X, xPrev)
			copy(fm.Y, yPrev)
			step /= 2
			if step < minSweepStep {
				break
			}
			continue
		}
		decrease := fm.Energy - eNew
		fm.Energy = eNew
		if fl.Verbose {
			fmt.Printf("flatten iteration %4d: energy = %12.6e, step = %8.2e\n",
				iter+1, fm.Energy, step)
		}
		if decrease <= fl.Tolerance*math.Max(fm.Energy, 1.e-300) {
			fm.Converged = true
			break
		}
	}
}

func (fl *Flattener) moveVertex(fm *FlatMap, v int, terms []edgeTerm, mine []int, step float64) {
	var (
		gx, gy, diag float64
	)
	for _, ti := range mine {
		t := terms[ti]
		other := t.V2
		if other == v {
			other = t.V1
		}
		dx := fm.X[v] - fm.X[other]
		dy := fm.Y[v] - fm.Y[other]
		dl := math.Sqrt(dx*dx + dy*dy)
		diag += 2 * t.W
		if dl < 1.e-14 {
			continue // Coincident points contribute no usable direction
		}
		c := 2 * t.W * (dl - t.L) / dl
		gx += c * dx
		gy += c * dy
	}
	if diag <= 0 {
		return
	}
	var (
		sx, sy = -step * gx / diag, -step * gy / diag
		x0, y0 = fm.X[v], fm.Y[v]
		before = fl.foldCountAround(fm, v)
	)
	for try := 0; try < vertexStepRetries; try++ {
		fm.X[v], fm.Y[v] = x0+sx, y0+sy
		// A clean start stays clean; a folded start may not get worse
		if fl.foldCountAround(fm, v) <= before {
			return
		}
		sx /= 2
		sy /= 2
	}
	// No acceptable move found: leave the vertex where it was
	fm.X[v], fm.Y[v] = x0, y0
}

func (fl *Flattener) foldCountAround(fm *FlatMap, v int) (folds int) {
	for _, k := range fm.Msh.VertFaces[v] {
		tri := fm.Msh.EToV[k]
		if geometry2D.Orientation(fm.Point(tri[0]), fm.Point(tri[1]), fm.Point(tri[2])) != fm.Sign {
			folds++
		}
	}
	return
}

func faceArea3D(fm *FlatMap, tri [3]int) float64 {
	var (
		msh = fm.Msh
	)
	return geometry2D.TriArea3D(
		msh.VX.AtVec(tri[0]), msh.VY.AtVec(tri[0]), msh.VZ.AtVec(tri[0]),
		msh.VX.AtVec(tri[1]), msh.VY.AtVec(tri[1]), msh.VZ.AtVec(tri[1]),
		msh.VX.AtVec(tri[2]), msh.VY.AtVec(tri[2]), msh.VZ.AtVec(tri[2])) / 2
}

func cot3D(fm *FlatMap, apex, v1, v2 int) float64 {
	var (
		msh        = fm.Msh
		ux         = msh.VX.AtVec(v1) - msh.VX.AtVec(apex)
		uy         = msh.VY.AtVec(v1) - msh.VY.AtVec(apex)
		uz         = msh.VZ.AtVec(v1) - msh.VZ.AtVec(apex)
		wx         = msh.VX.AtVec(v2) - msh.VX.AtVec(apex)
		wy         = msh.VY.AtVec(v2) - msh.VY.AtVec(apex)
		wz         = msh.VZ.AtVec(v2) - msh.VZ.AtVec(apex)
		dot        = ux*wx + uy*wy + uz*wz
		cx, cy, cz = uy*wz - uz*wy, uz*wx - ux*wz, ux*wy - uy*wx
		cl         = math.Sqrt(cx*cx + cy*cy + cz*cz)
	)
	if cl < 1.e-14 {
		return 0
	}
	return dot / cl
}
