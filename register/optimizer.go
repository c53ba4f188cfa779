/*
Package register is the deformable-registration engine: it fits a
per-vertex planar displacement of the flattened cortical map that balances
agreement with measured retinotopy against smoothness and visual-area
topology, then assembles the final per-vertex retinotopy predictions.
*/
package register

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/neurogeom/retreg/flatten"
	"github.com/neurogeom/retreg/template"
	"github.com/neurogeom/retreg/types"
	"github.com/neurogeom/retreg/utils"
)

type Optimizer struct {
	FM  *flatten.FlatMap
	Md  *template.Model
	Obs ObservationSet
	Cfg Config

	laplacian utils.CSR
	obsIDs    []int // Valid observations only, ascending vertex order
	rankPairs [][2]int
	initArea  []types.VisualArea
	pm        *utils.PartitionMap
	rng       *rand.Rand
	maxEcc    float64
}

func NewOptimizer(fm *flatten.FlatMap, md *template.Model, obs ObservationSet, cfg Config) (op *Optimizer) {
	var (
		nv = fm.Msh.Nv
	)
	op = &Optimizer{
		FM:     fm,
		Md:     md,
		Obs:    obs,
		Cfg:    cfg,
		pm:     utils.NewPartitionMap(cfg.ProcLimit, nv),
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		maxEcc: md.Parameters().MaxEcc,
	}

	// Laplacian of the flat-map mesh graph
	dok := utils.NewDOK(nv, nv)
	for _, e := range fm.Msh.Edges() {
		i, j := e[0], e[1]
		dok.Add(i, i, 1).Add(j, j, 1)
		dok.Add(i, j, -1).Add(j, i, -1)
	}
	op.laplacian = dok.ToCSR()

	// Template labels at the undeformed coordinates define the expected
	// area ordering; adjacent vertices of different areas become ordered
	// (inner, outer) pairs for the topology term
	op.initArea = make([]types.VisualArea, nv)
	for v := 0; v < nv; v++ {
		_, _, op.initArea[v] = md.CortexToAngle(fm.X[v], fm.Y[v])
	}
	for _, e := range fm.Msh.Edges() {
		ra, rb := op.initArea[e[0]], op.initArea[e[1]]
		if !ra.InROI() || !rb.InROI() || ra == rb {
			continue
		}
		if ra.Rank() < rb.Rank() {
			op.rankPairs = append(op.rankPairs, [2]int{e[0], e[1]})
		} else {
			op.rankPairs = append(op.rankPairs, [2]int{e[1], e[0]})
		}
	}

	if obs != nil {
		op.obsIDs = obs.ValidIDs(op.maxEcc)
		// Observations for vertices outside the flat map cannot be used
		valid := op.obsIDs[:0]
		for _, v := range op.obsIDs {
			if v >= 0 && v < nv {
				valid = append(valid, v)
			}
		}
		op.obsIDs = valid
	}
	return
}

/*
Run minimizes the composite energy by gradient descent with a fold-
rejecting, step-halving line search and returns the assembled retinotopy
map. With no usable observations (or in template-only mode) the
deformation is identically zero and the output is the raw template
prediction. Run never fails: recoverable conditions are reported through
the result's Flags.
*/
func (op *Optimizer) Run() (rm *RetinotopyMap) {
	var (
		nv    = op.FM.Msh.Nv
		flags Flags
	)
	flags.FlatteningNonConverged = !op.FM.Converged

	df := NewDeformationField(nv)
	if op.Cfg.Mode == TemplateOnly || len(op.obsIDs) == 0 {
		// Pure anatomical prediction: zero displacement by definition
		return op.assemble(df, 0, 0, flags)
	}

	var (
		cfg     = op.Cfg
		ep      = op.energy(df)
		e       = ep.Total(cfg.Weights)
		step    = cfg.InitialStep
		gx      = make([]float64, nv)
		gy      = make([]float64, nv)
		history = []float64{e}
		iter    int
	)
	best := df.Copy()
	bestE := e
	for iter = 0; iter < cfg.MaxIterations; iter++ {
		op.gradient(df, gx, gy)
		gInf := infNorm(gx, gy)
		if gInf == 0 {
			break
		}
		accepted := false
		for try := 0; try < cfg.StepRetries; try++ {
			cand := df.Copy()
			s := step / gInf
			for i := 0; i < nv; i++ {
				cand.DX[i] -= s * gx[i]
				cand.DY[i] -= s * gy[i]
			}
			// Injectivity: a step that folds the deformed map is rejected
			// outright and retried at half size
			if op.FM.FoldCountDisplaced(cand.DX, cand.DY) > op.FM.FoldCount() {
				step /= 2
				continue
			}
			epc := op.energy(cand)
			ec := epc.Total(cfg.Weights)
			if ec < e {
				df, e = cand, ec
				accepted = true
				step *= 2 // Recover step size after earlier halvings
				if step > cfg.InitialStep {
					step = cfg.InitialStep
				}
				break
			}
			step /= 2
		}
		if !accepted {
			flags.ConvergenceFailure = true
			break
		}
		if e < bestE {
			bestE = e
			best = df.Copy()
		}
		if op.Cfg.Verbose {
			fmt.Printf("register iteration %4d: energy = %12.6e, step = %8.2e\n",
				iter+1, e, step)
		}
		history = append(history, e)
		if converged(history, cfg.Window, cfg.Tolerance) {
			iter++
			break
		}
	}
	if iter == cfg.MaxIterations && !converged(history, cfg.Window, cfg.Tolerance) {
		flags.ConvergenceFailure = true
	}
	rm = op.assemble(best, bestE, iter, flags)
	rm.EnergyHistory = history
	return
}

func converged(history []float64, window int, tol float64) bool {
	if window < 1 {
		window = 1
	}
	if len(history) < window+1 {
		return false
	}
	var (
		then = history[len(history)-1-window]
		now  = history[len(history)-1]
	)
	return then-now <= tol*math.Max(math.Abs(then), 1.e-300)
}

func infNorm(xs, ys []float64) (norm float64) {
	for i := range xs {
		if a := math.Abs(xs[i]); a > norm {
			norm = a
		}
		if a := math.Abs(ys[i]); a > norm {
			norm = a
		}
	}
	return
}
