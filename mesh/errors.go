package mesh

import "fmt"

/*
MeshIntegrityError is fatal: the input connectivity is not a manifold
triangulation within the region of interest. Registration cannot proceed on
such a mesh because flattening assumes every interior edge borders exactly
two faces.
*/
type MeshIntegrityError struct {
	Edge   [2]int
	Count  int
	Reason string
}

func (e *MeshIntegrityError) Error() string {
	if e.Count != 0 {
		return fmt.Sprintf("mesh integrity: edge [%d,%d] borders %d faces, want 1 or 2 (%s)",
			e.Edge[0], e.Edge[1], e.Count, e.Reason)
	}
	return fmt.Sprintf("mesh integrity: edge [%d,%d]: %s", e.Edge[0], e.Edge[1], e.Reason)
}

/*
UnreachablePoleError is fatal: the designated pole vertex is disconnected
from the requested region of interest, so no flattening region can be grown
around it.
*/
type UnreachablePoleError struct {
	Pole       int
	NumReached int
	NumVerts   int
}

func (e *UnreachablePoleError) Error() string {
	return fmt.Sprintf("pole vertex %d reaches only %d of %d vertices",
		e.Pole, e.NumReached, e.NumVerts)
}
