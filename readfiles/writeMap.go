package readfiles

import (
	"bufio"
	"fmt"
	"os"

	"github.com/neurogeom/retreg/mesh"
	"github.com/neurogeom/retreg/register"
)

/*
WriteRetinotopyMap writes the per-vertex predictions as a whitespace table
with one line per region-of-interest vertex:

	vertex  polar-angle  eccentricity  area  fit-quality

Vertex ids are translated back to the subject mesh through the flattening
submesh's parent mapping. Recoverable diagnostics are recorded as header
comments so downstream tooling can spot flagged subjects.
*/
func WriteRetinotopyMap(filename string, msh *mesh.Mesh, rm *register.RetinotopyMap) (err error) {
	var (
		file *os.File
	)
	if file, err = os.Create(filename); err != nil {
		return fmt.Errorf("unable to create output file %s: %w", filename, err)
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	defer w.Flush()

	fmt.Fprintf(w, "# retreg retinotopy map: %d vertices, final energy %.6e, %d iterations\n",
		len(rm.PolarAngle), rm.Energy, rm.Iterations)
	if rm.Flags.FlatteningNonConverged {
		fmt.Fprintf(w, "# flag: flattening hit its iteration cap\n")
	}
	if rm.Flags.ConvergenceFailure {
		fmt.Fprintf(w, "# flag: optimizer returned best-effort state\n")
	}
	if rm.Flags.BoundaryInconsistency {
		fmt.Fprintf(w, "# flag: area boundary ordering inconsistent\n")
	}
	fmt.Fprintf(w, "# vertex polar-angle eccentricity area fit-quality\n")
	for v := range rm.PolarAngle {
		subject := v
		if msh.ParentIDs != nil {
			subject = msh.ParentIDs[v]
		}
		fmt.Fprintf(w, "%d %.6f %.6f %s %.4f\n",
			subject, rm.PolarAngle[v], rm.Eccentricity[v], rm.Area[v], rm.FitQuality[v])
	}
	return
}

// WriteOFF writes a mesh in the same ASCII OFF format ReadOFF accepts.
func WriteOFF(filename string, msh *mesh.Mesh) (err error) {
	var (
		file *os.File
	)
	if file, err = os.Create(filename); err != nil {
		return fmt.Errorf("unable to create mesh file %s: %w", filename, err)
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	defer w.Flush()

	fmt.Fprintf(w, "OFF\n%d %d 0\n", msh.Nv, msh.Nf)
	for v := 0; v < msh.Nv; v++ {
		fmt.Fprintf(w, "%.9g %.9g %.9g\n", msh.VX.AtVec(v), msh.VY.AtVec(v), msh.VZ.AtVec(v))
	}
	for _, tri := range msh.EToV {
		fmt.Fprintf(w, "3 %d %d %d\n", tri[0], tri[1], tri[2])
	}
	return
}
