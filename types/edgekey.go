package types

import (
	"fmt"
	"math"
)

/*
EdgeKey is an always positive number that stores an edge's two vertex indices
in a way that can be compared and used as a map key. An edge between vertices
[4] and [0] is always stored as [0,4], in ascending order of the index values,
so the same undirected edge hashes identically regardless of the winding of
the face that produced it.
*/
type EdgeKey uint64

func NewEdgeKey(verts [2]int) (packed EdgeKey) {
	// Packs two vertex indices into one uint64 to act as a hash and an
	// indirect access method
	var (
		limit = math.MaxUint32
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	var i1, i2 int
	if verts[0] <= verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeKey(i1 + i2<<32)
	return
}

func (ek EdgeKey) GetVertices() (verts [2]int) {
	var (
		high EdgeKey
	)
	high = ek >> 32
	verts[1] = int(high)
	verts[0] = int(ek - high*(1<<32))
	return
}
