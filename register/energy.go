package register

import (
	"math"
	"sync"
)

type energyParts struct {
	Data, Smooth, Topo float64
}

func (ep energyParts) Total(w Weights) float64 {
	return w.Data*ep.Data + w.Smooth*ep.Smooth + w.Topo*ep.Topo
}

/*
energy evaluates the composite objective at a displacement field.

  - Data: confidence-weighted squared residual between the template's
    prediction at the deformed coordinate and the measured value, with
    angle and eccentricity residuals normalized to comparable scales.
  - Smooth: discrete Laplacian quadratic form over both displacement
    components - the sum over edges of squared displacement differences.
  - Topo: one-sided hinge on the visual-area band ordering, active only
    where an adjacent inner/outer pair has inverted band coordinates.
*/
func (op *Optimizer) energy(df DeformationField) (ep energyParts) {
	var (
		fm = op.FM
	)
	for _, i := range op.obsIDs {
		ob := op.Obs[i]
		theta, rho, _ := op.Md.CortexToAngle(fm.X[i]+df.DX[i], fm.Y[i]+df.DY[i])
		dt := (theta - ob.PolarAngle) / 180
		dr := (rho - ob.Eccentricity) / op.maxEcc
		ep.Data += ob.Weight * (dt*dt + dr*dr)
	}
	ep.Smooth = op.laplacian.QuadraticForm(df.DX) + op.laplacian.QuadraticForm(df.DY)
	for _, pair := range op.rankPairs {
		if viol := op.bandViolation(df, pair); viol > 0 {
			ep.Topo += viol * viol
		}
	}
	return
}

// bandViolation returns |v_inner| - |v_outer| at the deformed positions:
// positive when the expected inner area sits farther from the band center
// than its outer neighbor, i.e. the boundary ordering is inverted.
func (op *Optimizer) bandViolation(df DeformationField, pair [2]int) float64 {
	var (
		fm   = op.FM
		a, b = pair[0], pair[1]
	)
	_, va := op.Md.BandCoordinate(fm.X[a]+df.DX[a], fm.Y[a]+df.DY[a])
	_, vb := op.Md.BandCoordinate(fm.X[b]+df.DX[b], fm.Y[b]+df.DY[b])
	return math.Abs(va) - math.Abs(vb)
}

/*
gradient evaluates the analytic gradient of the composite energy with
respect to the displacement field. Observation and ordering terms are
decomposed across the partition map, each worker accumulating into its own
buffer; buffers are then summed in partition order so the result does not
depend on goroutine scheduling.
*/
func (op *Optimizer) gradient(df DeformationField, gx, gy []float64) {
	var (
		fm = op.FM
		nv = fm.Msh.Nv
		w  = op.Cfg.Weights
		np = op.pm.ParallelDegree
		wg sync.WaitGroup
	)
	for i := 0; i < nv; i++ {
		gx[i], gy[i] = 0, 0
	}

	// Smoothness: grad = 2 L d, component-wise
	var (
		tx = make([]float64, nv)
		ty = make([]float64, nv)
	)
	op.laplacian.MulVecTo(tx, df.DX)
	op.laplacian.MulVecTo(ty, df.DY)
	for i := 0; i < nv; i++ {
		gx[i] += w.Smooth * 2 * tx[i]
		gy[i] += w.Smooth * 2 * ty[i]
	}

	// Data + topology terms, partitioned
	var (
		bufX = make([][]float64, np)
		bufY = make([][]float64, np)
	)
	obsPM := newRangeSplit(np, len(op.obsIDs))
	pairPM := newRangeSplit(np, len(op.rankPairs))
	for n := 0; n < np; n++ {
		bufX[n] = make([]float64, nv)
		bufY[n] = make([]float64, nv)
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			op.gradientWorker(df, bufX[n], bufY[n], obsPM[n], pairPM[n])
		}(n)
	}
	wg.Wait()
	for n := 0; n < np; n++ {
		for i := 0; i < nv; i++ {
			gx[i] += bufX[n][i]
			gy[i] += bufY[n][i]
		}
	}
}

func (op *Optimizer) gradientWorker(df DeformationField, gx, gy []float64, obsRange, pairRange [2]int) {
	var (
		fm = op.FM
		w  = op.Cfg.Weights
	)
	_, _, dVdX, dVdY := op.Md.BandGradient()
	for oi := obsRange[0]; oi < obsRange[1]; oi++ {
		i := op.obsIDs[oi]
		ob := op.Obs[i]
		x, y := fm.X[i]+df.DX[i], fm.Y[i]+df.DY[i]
		theta, rho, _ := op.Md.CortexToAngle(x, y)
		dThdX, dThdY, dRhdX, dRhdY := op.Md.Gradient(x, y)
		dt := (theta - ob.PolarAngle) / 180
		dr := (rho - ob.Eccentricity) / op.maxEcc
		c := w.Data * ob.Weight * 2
		gx[i] += c * (dt*dThdX/180 + dr*dRhdX/op.maxEcc)
		gy[i] += c * (dt*dThdY/180 + dr*dRhdY/op.maxEcc)
	}
	for pi := pairRange[0]; pi < pairRange[1]; pi++ {
		pair := op.rankPairs[pi]
		viol := op.bandViolation(df, pair)
		if viol <= 0 {
			continue
		}
		a, b := pair[0], pair[1]
		_, va := op.Md.BandCoordinate(fm.X[a]+df.DX[a], fm.Y[a]+df.DY[a])
		_, vb := op.Md.BandCoordinate(fm.X[b]+df.DX[b], fm.Y[b]+df.DY[b])
		c := w.Topo * 2 * viol
		gx[a] += c * sign(va) * dVdX
		gy[a] += c * sign(va) * dVdY
		gx[b] -= c * sign(vb) * dVdX
		gy[b] -= c * sign(vb) * dVdY
	}
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}

// newRangeSplit divides [0,n) into np contiguous buckets (some possibly
// empty when n < np).
func newRangeSplit(np, n int) (buckets [][2]int) {
	buckets = make([][2]int, np)
	base, rem := n/np, n%np
	var at int
	for i := 0; i < np; i++ {
		size := base
		if i < rem {
			size++
		}
		buckets[i] = [2]int{at, at + size}
		at += size
	}
	return
}
