package register

import (
	"math"

	"github.com/neurogeom/retreg/types"
)

// DeformationField is the per-vertex planar displacement applied to the
// flat map. It is owned by the optimizer while fitting and becomes part of
// the immutable result afterwards.
type DeformationField struct {
	DX, DY []float64
}

func NewDeformationField(nv int) DeformationField {
	return DeformationField{DX: make([]float64, nv), DY: make([]float64, nv)}
}

func (df DeformationField) Copy() DeformationField {
	out := NewDeformationField(len(df.DX))
	copy(out.DX, df.DX)
	copy(out.DY, df.DY)
	return out
}

func (df DeformationField) MaxDisplacement() (max float64) {
	for i := range df.DX {
		if d := math.Hypot(df.DX[i], df.DY[i]); d > max {
			max = d
		}
	}
	return
}

/*
Flags records the recoverable conditions met while producing a map. They
are diagnostics attached to the result, not failures: batch runs over many
subjects complete and flag individual subjects instead of halting.
*/
type Flags struct {
	FlatteningNonConverged bool
	ConvergenceFailure     bool
	BoundaryInconsistency  bool
}

func (f Flags) Any() bool {
	return f.FlatteningNonConverged || f.ConvergenceFailure || f.BoundaryInconsistency
}

/*
RetinotopyMap is the final per-vertex output of a registration run:
predicted polar angle (degrees, 0 = upper vertical meridian), eccentricity
(degrees), visual area label and a fit-quality score in [0,1] (zero where
no observation constrained the vertex). Indices refer to the flat-map
(region of interest) vertex numbering; ParentIDs on the underlying mesh
translate back to the subject mesh.
*/
type RetinotopyMap struct {
	PolarAngle   []float64
	Eccentricity []float64
	Area         []types.VisualArea
	FitQuality   []float64

	Deformation   DeformationField
	Energy        float64
	EnergyHistory []float64 // Accepted composite energy per iteration
	Iterations    int
	Flags         Flags
}
