package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/neurogeom/retreg/flatten"
	"github.com/neurogeom/retreg/mesh"
	"github.com/neurogeom/retreg/readfiles"
)

var (
	meshFile string
	pole     int
	radius   float64
	method   string
)

func main() {
	meshFilePtr := flag.String("meshFile", meshFile, "surface mesh in ASCII OFF format")
	polePtr := flag.Int("pole", 0, "pole vertex for the flattening")
	radiusPtr := flag.Float64("radius", 0, "geodesic extraction radius, 0 = whole component")
	methodPtr := flag.String("method", "distance", "flattening method: distance, conformal or area")
	flag.Parse()
	meshFile = *meshFilePtr
	pole = *polePtr
	radius = *radiusPtr
	method = *methodPtr
	if len(meshFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", meshFile)

	VX, VY, VZ, EToV, err := readfiles.ReadOFF(meshFile)
	if err != nil {
		panic(err)
	}
	msh, err := mesh.New(VX, VY, VZ, EToV)
	if err != nil {
		panic(err)
	}
	patch, err := msh.SubmeshWithin(pole, radius)
	if err != nil {
		panic(err)
	}
	fmethod := flatten.NewMethod(method)
	fl := flatten.NewFlattener(fmethod)
	fm, err := fl.Flatten(patch, patch.LocalID(pole))
	if err != nil {
		panic(err)
	}

	ds := NewDistortionStudy(fm)
	fmt.Printf("Method = %s, Vertices = %d, Faces = %d\n", fmethod.Print(), patch.Nv, patch.Nf)
	fmt.Printf("Converged = %v after %d iterations, energy = %.6e\n",
		fm.Converged, fm.Iterations, fm.Energy)
	fmt.Printf("Folded faces: %d\n", fm.FoldCount())
	fmt.Printf("Edge length ratio (flat/surface): RMS deviation %.4f, max %.4f, min %.4f\n",
		ds.RMS, ds.Max, ds.Min)
	fmt.Printf("Ratio percentiles: p05 %.4f, p50 %.4f, p95 %.4f\n",
		ds.Percentile(0.05), ds.Percentile(0.50), ds.Percentile(0.95))
}

// DistortionStudy collects the per-edge metric distortion of a flattening:
// the ratio of flattened edge length to original surface edge length.
type DistortionStudy struct {
	Ratios        []float64 // Sorted ascending
	RMS, Min, Max float64
}

func NewDistortionStudy(fm *flatten.FlatMap) (ds *DistortionStudy) {
	ds = &DistortionStudy{Min: math.Inf(1), Max: math.Inf(-1)}
	var sumSq float64
	for _, e := range fm.Msh.Edges() {
		l3 := fm.Msh.EdgeLength(e[0], e[1])
		if l3 == 0 {
			continue
		}
		dx := fm.X[e[0]] - fm.X[e[1]]
		dy := fm.Y[e[0]] - fm.Y[e[1]]
		r := math.Sqrt(dx*dx+dy*dy) / l3
		ds.Ratios = append(ds.Ratios, r)
		sumSq += (r - 1) * (r - 1)
		ds.Min = math.Min(ds.Min, r)
		ds.Max = math.Max(ds.Max, r)
	}
	sort.Float64s(ds.Ratios)
	if len(ds.Ratios) != 0 {
		ds.RMS = math.Sqrt(sumSq / float64(len(ds.Ratios)))
	}
	return
}

func (ds *DistortionStudy) Percentile(p float64) float64 {
	if len(ds.Ratios) == 0 {
		return math.NaN()
	}
	i := int(p * float64(len(ds.Ratios)-1))
	return ds.Ratios[i]
}
