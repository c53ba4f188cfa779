/*
Package readfiles adapts on-disk surface and observation formats into the
in-memory structures the registration core consumes, and writes the final
retinotopy maps back out. The core itself never touches files.
*/
package readfiles

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/neurogeom/retreg/utils"
)

/*
ReadOFF reads a triangulated surface in ASCII OFF format: an optional
"OFF" header, a "nv nf ne" count line, nv vertex lines of three
coordinates, then nf face lines of "3 a b c". Blank lines and '#' comments
are skipped anywhere.
*/
func ReadOFF(filename string) (VX, VY, VZ utils.Vector, EToV utils.Matrix, err error) {
	var (
		file *os.File
	)
	if file, err = os.Open(filename); err != nil {
		err = fmt.Errorf("unable to open mesh file %s: %w", filename, err)
		return
	}
	defer file.Close()
	scanner := newFieldScanner(file)

	fields, err := scanner.next()
	if err != nil {
		err = fmt.Errorf("%s: empty mesh file", filename)
		return
	}
	if len(fields) == 1 && strings.EqualFold(fields[0], "OFF") {
		if fields, err = scanner.next(); err != nil {
			err = fmt.Errorf("%s: missing count line", filename)
			return
		}
	}
	if len(fields) < 2 {
		err = fmt.Errorf("%s: malformed count line %v", filename, fields)
		return
	}
	nv, err1 := strconv.Atoi(fields[0])
	nf, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || nv < 3 || nf < 1 {
		err = fmt.Errorf("%s: bad vertex/face counts %v", filename, fields)
		return
	}

	var (
		vx = make([]float64, nv)
		vy = make([]float64, nv)
		vz = make([]float64, nv)
	)
	for i := 0; i < nv; i++ {
		if fields, err = scanner.next(); err != nil || len(fields) < 3 {
			err = fmt.Errorf("%s: truncated at vertex %d of %d", filename, i, nv)
			return
		}
		if vx[i], err = strconv.ParseFloat(fields[0], 64); err == nil {
			if vy[i], err = strconv.ParseFloat(fields[1], 64); err == nil {
				vz[i], err = strconv.ParseFloat(fields[2], 64)
			}
		}
		if err != nil {
			err = fmt.Errorf("%s: bad coordinate on vertex %d: %w", filename, i, err)
			return
		}
	}

	faces := make([]float64, 0, nf*3)
	for k := 0; k < nf; k++ {
		if fields, err = scanner.next(); err != nil || len(fields) < 4 {
			err = fmt.Errorf("%s: truncated at face %d of %d", filename, k, nf)
			return
		}
		if fields[0] != "3" {
			err = fmt.Errorf("%s: face %d has %s corners, only triangles are supported",
				filename, k, fields[0])
			return
		}
		for n := 1; n <= 3; n++ {
			var v int
			if v, err = strconv.Atoi(fields[n]); err != nil || v < 0 || v >= nv {
				err = fmt.Errorf("%s: face %d references bad vertex %q", filename, k, fields[n])
				return
			}
			faces = append(faces, float64(v))
		}
	}

	VX = utils.NewVector(nv, vx)
	VY = utils.NewVector(nv, vy)
	VZ = utils.NewVector(nv, vz)
	EToV = utils.NewMatrix(nf, 3, faces)
	return
}

type fieldScanner struct {
	s *bufio.Scanner
}

func newFieldScanner(file *os.File) *fieldScanner {
	s := bufio.NewScanner(file)
	s.Buffer(make([]byte, 1024*1024), 1024*1024)
	return &fieldScanner{s: s}
}

// next returns the fields of the next non-blank, non-comment line.
func (fs *fieldScanner) next() ([]string, error) {
	for fs.s.Scan() {
		line := fs.s.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) > 0 {
			return fields, nil
		}
	}
	if err := fs.s.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("unexpected end of file")
}
