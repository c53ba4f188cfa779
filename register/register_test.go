package register

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurogeom/retreg/flatten"
	"github.com/neurogeom/retreg/meshgen"
	"github.com/neurogeom/retreg/template"
	"github.com/neurogeom/retreg/types"
)

func flatDisk(t *testing.T) *flatten.FlatMap {
	t.Helper()
	msh := meshgen.Disk(5, 16, 10, 0)
	fl := flatten.NewFlattener(flatten.DistancePreserving)
	fm, err := fl.Flatten(msh, 0)
	require.NoError(t, err)
	require.True(t, fm.Converged)
	return fm
}

// synthObservations samples the template's own predictions at the
// undeformed coordinates and perturbs them with zero-mean noise.
func synthObservations(fm *flatten.FlatMap, md *template.Model, noise float64, seed int64) ObservationSet {
	rng := rand.New(rand.NewSource(seed))
	obs := make(ObservationSet)
	for v := 0; v < fm.Msh.Nv; v++ {
		theta, rho, area := md.CortexToAngle(fm.X[v], fm.Y[v])
		if !area.InROI() {
			continue
		}
		th := theta + noise*rng.NormFloat64()
		rh := rho + noise*rng.NormFloat64()/10
		obs[v] = Observation{
			PolarAngle:   math.Min(180, math.Max(0, th)),
			Eccentricity: math.Max(0, rh),
			Weight:       1,
		}
	}
	return obs
}

func TestTemplateOnlyIsNoOp(t *testing.T) {
	fm := flatDisk(t)
	md := template.NewModel(template.DefaultParameters())

	cfg := DefaultConfig()
	cfg.Mode = TemplateOnly
	rm := NewOptimizer(fm, md, nil, cfg).Run()

	assert.InDelta(t, 0., rm.Deformation.MaxDisplacement(), 0.)
	assert.Equal(t, 0, rm.Iterations)
	assert.False(t, rm.Flags.ConvergenceFailure)
	// Output is exactly the raw template evaluation
	for v := 0; v < fm.Msh.Nv; v++ {
		theta, rho, area := md.CortexToAngle(fm.X[v], fm.Y[v])
		assert.Equal(t, theta, rm.PolarAngle[v])
		assert.Equal(t, rho, rm.Eccentricity[v])
		assert.Equal(t, area, rm.Area[v])
	}
}

func TestNoObservationsEqualsTemplateOnly(t *testing.T) {
	fm := flatDisk(t)
	md := template.NewModel(template.DefaultParameters())

	cfg := DefaultConfig() // data-driven
	rm := NewOptimizer(fm, md, ObservationSet{}, cfg).Run()
	assert.InDelta(t, 0., rm.Deformation.MaxDisplacement(), 0.)
	assert.Equal(t, 0., rm.Energy)
}

func TestZeroConfidenceOutlierIsIgnored(t *testing.T) {
	fm := flatDisk(t)
	md := template.NewModel(template.DefaultParameters())

	cfg := DefaultConfig()
	ref := NewOptimizer(fm, md, nil, cfg).Run()

	// A wildly implausible measurement carrying zero confidence
	obs := ObservationSet{3: {PolarAngle: 179, Eccentricity: 89, Weight: 0}}
	rm := NewOptimizer(fm, md, obs, cfg).Run()

	assert.Equal(t, ref.PolarAngle, rm.PolarAngle)
	assert.Equal(t, ref.Eccentricity, rm.Eccentricity)
	assert.Equal(t, ref.Area, rm.Area)
	assert.InDelta(t, 0., rm.Deformation.MaxDisplacement(), 0.)
}

func TestEnergyMonotone(t *testing.T) {
	fm := flatDisk(t)
	md := template.NewModel(template.DefaultParameters())
	obs := synthObservations(fm, md, 10, 7)

	cfg := DefaultConfig()
	cfg.MaxIterations = 50
	rm := NewOptimizer(fm, md, obs, cfg).Run()
	require.NotEmpty(t, rm.EnergyHistory)
	for i := 1; i < len(rm.EnergyHistory); i++ {
		assert.LessOrEqual(t, rm.EnergyHistory[i], rm.EnergyHistory[i-1],
			"energy rose at iteration %d", i)
	}
	// No folded faces in the deformed map
	assert.Equal(t, 0, fm.FoldCountDisplaced(rm.Deformation.DX, rm.Deformation.DY))
}

func TestDeterminism(t *testing.T) {
	md := template.NewModel(template.DefaultParameters())
	obs1, obs2 := make(ObservationSet), make(ObservationSet)
	fm1, fm2 := flatDisk(t), flatDisk(t)
	for v, ob := range synthObservations(fm1, md, 15, 3) {
		obs1[v] = ob
		obs2[v] = ob
	}
	cfg := DefaultConfig()
	cfg.MaxIterations = 30
	cfg.Seed = 42
	rm1 := NewOptimizer(fm1, md, obs1, cfg).Run()
	rm2 := NewOptimizer(fm2, md, obs2, cfg).Run()

	assert.Equal(t, rm1.PolarAngle, rm2.PolarAngle)
	assert.Equal(t, rm1.Eccentricity, rm2.Eccentricity)
	assert.Equal(t, rm1.Area, rm2.Area)
	assert.Equal(t, rm1.Deformation.DX, rm2.Deformation.DX)
	assert.Equal(t, rm1.Deformation.DY, rm2.Deformation.DY)
	assert.Equal(t, rm1.EnergyHistory, rm2.EnergyHistory)
}

func TestNoiseRecovery(t *testing.T) {
	// Observations generated from the template itself plus zero-mean noise
	// should not pull the fit far from the template when smoothness is
	// strong: the deformation stays small and predictions stay close
	fm := flatDisk(t)
	md := template.NewModel(template.DefaultParameters())
	obs := synthObservations(fm, md, 5, 11)

	cfg := DefaultConfig()
	cfg.Weights.Smooth = 10
	cfg.MaxIterations = 100
	op := NewOptimizer(fm, md, obs, cfg)
	rm := op.Run()

	assert.Less(t, rm.Deformation.MaxDisplacement(), 1.0)
	for v := 0; v < fm.Msh.Nv; v++ {
		if !rm.Area[v].InROI() {
			continue
		}
		theta, rho, _ := md.CortexToAngle(fm.X[v], fm.Y[v])
		assert.InDelta(t, theta, rm.PolarAngle[v], 25, "vertex %d polar angle", v)
		assert.InDelta(t, rho, rm.Eccentricity[v], 3, "vertex %d eccentricity", v)
	}
}

func TestNonConvergedFlatMapStillRegisters(t *testing.T) {
	// Flattening capped at one iteration reports non-convergence;
	// registration must proceed on the best-effort parameterization
	msh := meshgen.Disk(5, 16, 10, 3)
	fl := flatten.NewFlattener(flatten.DistancePreserving)
	fl.MaxIterations = 1
	fm, err := fl.Flatten(msh, 0)
	require.NoError(t, err)
	require.False(t, fm.Converged)

	md := template.NewModel(template.DefaultParameters())
	obs := synthObservations(fm, md, 10, 5)
	cfg := DefaultConfig()
	cfg.MaxIterations = 20
	rm := NewOptimizer(fm, md, obs, cfg).Run()
	assert.True(t, rm.Flags.FlatteningNonConverged)
	for v := 0; v < fm.Msh.Nv; v++ {
		assert.False(t, math.IsNaN(rm.PolarAngle[v]))
		assert.False(t, math.IsNaN(rm.Eccentricity[v]))
	}
}

func TestObservationValidity(t *testing.T) {
	assert.True(t, Observation{90, 10, 0.5}.Valid(90))
	assert.False(t, Observation{90, 10, 0}.Valid(90))
	assert.False(t, Observation{-5, 10, 1}.Valid(90))
	assert.False(t, Observation{90, 95, 1}.Valid(90))
	assert.False(t, Observation{math.NaN(), 10, 1}.Valid(90))

	os := ObservationSet{
		7: {90, 10, 1},
		2: {90, 10, 0},
		5: {45, 5, 0.8},
	}
	assert.Equal(t, []int{2, 5, 7}, os.SortedIDs())
	assert.Equal(t, []int{5, 7}, os.ValidIDs(90))
}

func TestRunModeAndAreaOrdering(t *testing.T) {
	assert.Equal(t, TemplateOnly, NewRunMode("template-only"))
	assert.Equal(t, DataDriven, NewRunMode("data"))
	assert.Panics(t, func() { NewRunMode("nope") })
	assert.True(t, types.V1.Rank() < types.V2.Rank())
}
