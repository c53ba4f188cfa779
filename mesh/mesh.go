package mesh

import (
	"container/heap"
	"fmt"
	"math"
	"sort"

	"github.com/neurogeom/retreg/types"
	"github.com/neurogeom/retreg/utils"
)

/*
Mesh is an adjacency-indexed triangulated cortical surface. Vertices are
stored as parallel coordinate vectors, faces as index triples into those
vectors, and neighbor relationships as index lists per vertex (no pointer
graph). A Mesh is immutable after construction except for attached scalar
fields like Curvature.
*/
type Mesh struct {
	Nv, Nf     int
	VX, VY, VZ utils.Vector
	Curvature  []float64 // Optional per-vertex field, nil when absent
	EToV       [][3]int  // Face -> vertex connectivity
	Neighbors  [][]int   // Vertex -> sorted vertex neighbors
	EdgeFaces  map[types.EdgeKey][]int
	VertFaces  [][]int // Vertex -> incident face ids
	IsBoundary []bool
	ParentIDs  utils.Index // For submeshes: vertex ids in the parent mesh, else nil
}

func New(VX, VY, VZ utils.Vector, EToV utils.Matrix) (msh *Mesh, err error) {
	var (
		nv    = VX.Len()
		nf, _ = EToV.Dims()
	)
	if VY.Len() != nv || VZ.Len() != nv {
		return nil, fmt.Errorf("coordinate vectors disagree on length: %d, %d, %d",
			VX.Len(), VY.Len(), VZ.Len())
	}
	msh = &Mesh{
		Nv:   nv,
		Nf:   nf,
		VX:   VX,
		VY:   VY,
		VZ:   VZ,
		EToV: make([][3]int, nf),
	}
	for k := 0; k < nf; k++ {
		for n := 0; n < 3; n++ {
			v := int(EToV.At(k, n))
			if v < 0 || v >= nv {
				return nil, fmt.Errorf("face %d references vertex %d, have %d vertices", k, v, nv)
			}
			msh.EToV[k][n] = v
		}
	}
	if err = msh.buildAdjacency(); err != nil {
		return nil, err
	}
	return
}

func (msh *Mesh) buildAdjacency() (err error) {
	var (
		neighborSets = make([]map[int]struct{}, msh.Nv)
	)
	msh.EdgeFaces = make(map[types.EdgeKey][]int)
	msh.VertFaces = make([][]int, msh.Nv)
	msh.IsBoundary = make([]bool, msh.Nv)
	for i := range neighborSets {
		neighborSets[i] = make(map[int]struct{})
	}
	for k, tri := range msh.EToV {
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			return &MeshIntegrityError{
				Edge:   [2]int{tri[0], tri[1]},
				Reason: fmt.Sprintf("face %d is degenerate %v", k, tri),
			}
		}
		for n := 0; n < 3; n++ {
			v1, v2 := tri[n], tri[(n+1)%3]
			ek := types.NewEdgeKey([2]int{v1, v2})
			msh.EdgeFaces[ek] = append(msh.EdgeFaces[ek], k)
			neighborSets[v1][v2] = struct{}{}
			neighborSets[v2][v1] = struct{}{}
		}
		for _, v := range tri {
			msh.VertFaces[v] = append(msh.VertFaces[v], k)
		}
	}
	for ek, faces := range msh.EdgeFaces {
		if len(faces) > 2 {
			verts := ek.GetVertices()
			return &MeshIntegrityError{
				Edge:   verts,
				Count:  len(faces),
				Reason: "non-manifold edge",
			}
		}
		if len(faces) == 1 {
			verts := ek.GetVertices()
			msh.IsBoundary[verts[0]] = true
			msh.IsBoundary[verts[1]] = true
		}
	}
	// Sorted neighbor lists keep every downstream traversal deterministic
	msh.Neighbors = make([][]int, msh.Nv)
	for i, set := range neighborSets {
		nbrs := make([]int, 0, len(set))
		for v := range set {
			nbrs = append(nbrs, v)
		}
		sort.Ints(nbrs)
		msh.Neighbors[i] = nbrs
	}
	return
}

func (msh *Mesh) EdgeLength(v1, v2 int) float64 {
	var (
		dx = msh.VX.AtVec(v2) - msh.VX.AtVec(v1)
		dy = msh.VY.AtVec(v2) - msh.VY.AtVec(v1)
		dz = msh.VZ.AtVec(v2) - msh.VZ.AtVec(v1)
	)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

/*
GeodesicDistance returns the graph-geodesic distance (Dijkstra over edge
Euclidean lengths) from vertex [from] to every vertex. Unreachable vertices
receive +Inf.
*/
func (msh *Mesh) GeodesicDistance(from int) (dist []float64) {
	dist = make([]float64, msh.Nv)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[from] = 0
	pq := &vertexQueue{{from, 0}}
	for pq.Len() > 0 {
		item := heap.Pop(pq).(vertexDist)
		if item.d > dist[item.v] {
			continue
		}
		for _, nbr := range msh.Neighbors[item.v] {
			d := item.d + msh.EdgeLength(item.v, nbr)
			if d < dist[nbr] {
				dist[nbr] = d
				heap.Push(pq, vertexDist{nbr, d})
			}
		}
	}
	return
}

// Distance is the geodesic distance between two vertices.
func (msh *Mesh) Distance(from, to int) float64 {
	return msh.GeodesicDistance(from)[to]
}

/*
SubmeshWithin extracts the connected patch of vertices within geodesic
radius [radius] of the pole (radius <= 0 selects everything reachable),
reindexed densely with ParentIDs mapping back to this mesh. Faces are kept
only when all three corners survive. Fails with UnreachablePoleError when
the pole is out of range or reaches no other vertex.
*/
func (msh *Mesh) SubmeshWithin(pole int, radius float64) (sub *Mesh, err error) {
	if pole < 0 || pole >= msh.Nv {
		return nil, &UnreachablePoleError{Pole: pole, NumReached: 0, NumVerts: msh.Nv}
	}
	var (
		dist    = msh.GeodesicDistance(pole)
		keep    = make([]bool, msh.Nv)
		newID   = make([]int, msh.Nv)
		nKept   int
		parents utils.Index
	)
	for v, d := range dist {
		if !math.IsInf(d, 1) && (radius <= 0 || d <= radius) {
			keep[v] = true
		}
		newID[v] = -1
	}
	for v := 0; v < msh.Nv; v++ {
		if keep[v] {
			newID[v] = nKept
			parents = append(parents, v)
			nKept++
		}
	}
	if nKept < 3 {
		return nil, &UnreachablePoleError{Pole: pole, NumReached: nKept - 1, NumVerts: msh.Nv}
	}
	var (
		vx = make([]float64, nKept)
		vy = make([]float64, nKept)
		vz = make([]float64, nKept)
	)
	for i, p := range parents {
		vx[i] = msh.VX.AtVec(p)
		vy[i] = msh.VY.AtVec(p)
		vz[i] = msh.VZ.AtVec(p)
	}
	var faces []float64
	var nf int
	for _, tri := range msh.EToV {
		if keep[tri[0]] && keep[tri[1]] && keep[tri[2]] {
			faces = append(faces, float64(newID[tri[0]]), float64(newID[tri[1]]), float64(newID[tri[2]]))
			nf++
		}
	}
	if nf == 0 {
		return nil, &UnreachablePoleError{Pole: pole, NumReached: nKept - 1, NumVerts: msh.Nv}
	}
	sub, err = New(utils.NewVector(nKept, vx), utils.NewVector(nKept, vy),
		utils.NewVector(nKept, vz), utils.NewMatrix(nf, 3, faces))
	if err != nil {
		return nil, err
	}
	sub.ParentIDs = parents
	if msh.Curvature != nil {
		sub.Curvature = make([]float64, nKept)
		for i, p := range parents {
			sub.Curvature[i] = msh.Curvature[p]
		}
	}
	return
}

// Edges returns every undirected edge exactly once, in a stable sorted
// order so that iteration over edges is reproducible across runs.
func (msh *Mesh) Edges() (edges [][2]int) {
	keys := make([]types.EdgeKey, 0, len(msh.EdgeFaces))
	for ek := range msh.EdgeFaces {
		keys = append(keys, ek)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	edges = make([][2]int, len(keys))
	for i, ek := range keys {
		edges[i] = ek.GetVertices()
	}
	return
}

// OppositeVertices returns the third vertex of each face bordering edge
// v1-v2 (one vertex for a boundary edge, two for an interior edge).
func (msh *Mesh) OppositeVertices(v1, v2 int) (opp []int) {
	ek := types.NewEdgeKey([2]int{v1, v2})
	for _, k := range msh.EdgeFaces[ek] {
		for _, v := range msh.EToV[k] {
			if v != v1 && v != v2 {
				opp = append(opp, v)
			}
		}
	}
	return
}

// LocalID translates a parent-mesh vertex id into this submesh's dense
// index, or -1 when the vertex was not kept. On a mesh that is not a
// submesh the id maps to itself.
func (msh *Mesh) LocalID(parent int) int {
	if msh.ParentIDs == nil {
		if parent < 0 || parent >= msh.Nv {
			return -1
		}
		return parent
	}
	i := sort.SearchInts(msh.ParentIDs, parent)
	if i < len(msh.ParentIDs) && msh.ParentIDs[i] == parent {
		return i
	}
	return -1
}

type vertexDist struct {
	v int
	d float64
}

type vertexQueue []vertexDist

func (q vertexQueue) Len() int            { return len(q) }
func (q vertexQueue) Less(i, j int) bool  { return q[i].d < q[j].d }
func (q vertexQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *vertexQueue) Push(x interface{}) { *q = append(*q, x.(vertexDist)) }
func (q *vertexQueue) Pop() (x interface{}) {
	old := *q
	n := len(old)
	x = old[n-1]
	*q = old[:n-1]
	return
}
