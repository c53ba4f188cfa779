package register

import (
	"math"
	"sort"
)

/*
Observation is a measured retinotopic value at one vertex: polar angle and
eccentricity from functional imaging, plus a confidence weight (typically
the variance explained of the pRF fit, in [0,1]). Vertices without
functional coverage simply have no entry in the ObservationSet.
*/
type Observation struct {
	PolarAngle   float64
	Eccentricity float64
	Weight       float64
}

// Valid reports whether the observation can participate in the data term.
// Zero-weight or out-of-range measurements are excluded entirely, so a
// wild value with no confidence cannot perturb the fit.
func (ob Observation) Valid(maxEcc float64) bool {
	if !(ob.Weight > 0) {
		return false
	}
	for _, f := range []float64{ob.PolarAngle, ob.Eccentricity, ob.Weight} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return ob.PolarAngle >= 0 && ob.PolarAngle <= 180 &&
		ob.Eccentricity >= 0 && ob.Eccentricity <= maxEcc
}

// ObservationSet maps flat-map vertex ids to their measurements.
type ObservationSet map[int]Observation

// SortedIDs returns the vertex ids in ascending order; every iteration
// over observations goes through this so runs are reproducible.
func (os ObservationSet) SortedIDs() (ids []int) {
	ids = make([]int, 0, len(os))
	for v := range os {
		ids = append(ids, v)
	}
	sort.Ints(ids)
	return
}

// ValidIDs filters SortedIDs down to observations usable in the data term.
func (os ObservationSet) ValidIDs(maxEcc float64) (ids []int) {
	for _, v := range os.SortedIDs() {
		if os[v].Valid(maxEcc) {
			ids = append(ids, v)
		}
	}
	return
}
