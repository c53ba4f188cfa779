package register

import (
	"math"

	"github.com/neurogeom/retreg/types"
)

/*
assemble applies the deformation field to the flat map, re-evaluates the
template at the deformed coordinates and emits the final RetinotopyMap. In
data-driven mode the template prediction at an observed vertex is blended
toward the measurement by its confidence weight. A final consistency pass
re-sorts area labels across boundaries where the ordering inverted despite
the topology term, and flags the result when an inversion survives.
*/
func (op *Optimizer) assemble(df DeformationField, energy float64, iterations int, flags Flags) (rm *RetinotopyMap) {
	var (
		fm = op.FM
		nv = fm.Msh.Nv
	)
	rm = &RetinotopyMap{
		PolarAngle:   make([]float64, nv),
		Eccentricity: make([]float64, nv),
		Area:         make([]types.VisualArea, nv),
		FitQuality:   make([]float64, nv),
		Deformation:  df,
		Energy:       energy,
		Iterations:   iterations,
		Flags:        flags,
	}
	for v := 0; v < nv; v++ {
		theta, rho, area := op.Md.CortexToAngle(fm.X[v]+df.DX[v], fm.Y[v]+df.DY[v])
		rm.PolarAngle[v] = theta
		rm.Eccentricity[v] = rho
		rm.Area[v] = area
	}
	if op.Cfg.Mode == DataDriven {
		for _, v := range op.obsIDs {
			ob := op.Obs[v]
			w := ob.Weight
			if w > 1 {
				w = 1
			}
			rm.PolarAngle[v] = (1-w)*rm.PolarAngle[v] + w*ob.PolarAngle
			rm.Eccentricity[v] = (1-w)*rm.Eccentricity[v] + w*ob.Eccentricity
			// Residual between the deformed template and the measurement,
			// scaled into a [0,1] quality score
			theta, rho, _ := op.Md.CortexToAngle(fm.X[v]+df.DX[v], fm.Y[v]+df.DY[v])
			dt := math.Abs(theta-ob.PolarAngle) / 180
			dr := math.Abs(rho-ob.Eccentricity) / op.maxEcc
			rm.FitQuality[v] = w * math.Max(0, 1-(dt+dr))
		}
	}
	op.resortBoundaries(rm, df)
	return
}

/*
resortBoundaries walks every expected (inner, outer) boundary pair and, on
inversion of the deformed band ordering, swaps the two area labels when the
swap restores the expected order. The processing order of violated pairs is
shuffled with the run's seeded generator (pure tie-breaking: with a fixed
seed the pass is deterministic). Any surviving inversion sets the
BoundaryInconsistency flag - the map is still emitted.
*/
func (op *Optimizer) resortBoundaries(rm *RetinotopyMap, df DeformationField) {
	var violated [][2]int
	for _, pair := range op.rankPairs {
		if op.bandViolation(df, pair) > 0 {
			violated = append(violated, pair)
		}
	}
	if len(violated) == 0 {
		return
	}
	op.rng.Shuffle(len(violated), func(i, j int) {
		violated[i], violated[j] = violated[j], violated[i]
	})
	for _, pair := range violated {
		a, b := pair[0], pair[1]
		// The inner label should rank below the outer one; swap if the
		// current assignment disagrees and the swap repairs it
		if rm.Area[a].Rank() > rm.Area[b].Rank() {
			rm.Area[a], rm.Area[b] = rm.Area[b], rm.Area[a]
		}
	}
	for _, pair := range violated {
		if rm.Area[pair[0]].Rank() > rm.Area[pair[1]].Rank() {
			rm.Flags.BoundaryInconsistency = true
			return
		}
	}
}
