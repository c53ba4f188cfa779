package readfiles

import (
	"fmt"
	"os"
	"strconv"

	"github.com/neurogeom/retreg/register"
)

/*
ReadObservations reads measured retinotopy from a whitespace-separated
table with one line per observed vertex:

	vertex  polar-angle  eccentricity  weight

Vertex ids refer to the subject mesh; polar angle and eccentricity are in
degrees; weight is the confidence (variance explained) of the measurement.
Vertices without functional coverage are simply absent. '#' comments and
blank lines are allowed.
*/
func ReadObservations(filename string) (obs register.ObservationSet, err error) {
	var (
		file *os.File
	)
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open observation file %s: %w", filename, err)
	}
	defer file.Close()
	scanner := newFieldScanner(file)

	obs = make(register.ObservationSet)
	for line := 1; ; line++ {
		fields, ferr := scanner.next()
		if ferr != nil {
			break // end of file
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("%s: line with %d fields, want 4: %v", filename, len(fields), fields)
		}
		v, err1 := strconv.Atoi(fields[0])
		theta, err2 := strconv.ParseFloat(fields[1], 64)
		rho, err3 := strconv.ParseFloat(fields[2], 64)
		weight, err4 := strconv.ParseFloat(fields[3], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || v < 0 {
			return nil, fmt.Errorf("%s: malformed observation %v", filename, fields)
		}
		if _, dup := obs[v]; dup {
			return nil, fmt.Errorf("%s: duplicate observation for vertex %d", filename, v)
		}
		obs[v] = register.Observation{PolarAngle: theta, Eccentricity: rho, Weight: weight}
	}
	return
}
