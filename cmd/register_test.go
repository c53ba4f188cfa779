package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/magiconair/properties/assert"

	"github.com/neurogeom/retreg/RunParameters"
	"github.com/neurogeom/retreg/meshgen"
	"github.com/neurogeom/retreg/readfiles"
)

func TestRegisterSubject(t *testing.T) {
	var (
		err error
		dir = t.TempDir()
	)
	meshFile := filepath.Join(dir, "disk.off")
	obsFile := filepath.Join(dir, "disk.obs")
	outFile := filepath.Join(dir, "disk.map")

	msh := meshgen.Disk(5, 16, 10, 0)
	if err = readfiles.WriteOFF(meshFile, msh); err != nil {
		panic(err)
	}
	if err = writeSyntheticObservations(obsFile, msh, 5, 3); err != nil {
		panic(err)
	}

	fileInput := []byte(`
Title: Synthetic disk
PoleVertex: 0
FlattenMethod: distance
RunMode: data
WSmooth: 2
MaxIterations: 50
`)
	rp := RunParameters.DefaultRunParameters()
	if err = rp.Parse(fileInput); err != nil {
		panic(err)
	}
	assert.Equal(t, rp.Validate(), nil)
	assert.Equal(t, rp.Title, "Synthetic disk")
	assert.Equal(t, rp.WSmooth, 2.)
	rp.Print()

	if err = registerSubject(meshFile, obsFile, outFile, rp, false); err != nil {
		panic(err)
	}
	data, err := os.ReadFile(outFile)
	if err != nil {
		panic(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	var rows int
	for _, line := range lines {
		if !strings.HasPrefix(line, "#") {
			rows++
		}
	}
	assert.Equal(t, rows, msh.Nv)
}

func TestRegisterTemplateOnly(t *testing.T) {
	var (
		err error
		dir = t.TempDir()
	)
	meshFile := filepath.Join(dir, "disk.off")
	outFile := filepath.Join(dir, "disk.map")
	if err = readfiles.WriteOFF(meshFile, meshgen.Disk(4, 12, 10, 1)); err != nil {
		panic(err)
	}
	rp := RunParameters.DefaultRunParameters()
	rp.RunMode = "template-only"
	if err = registerSubject(meshFile, "", outFile, rp, false); err != nil {
		panic(err)
	}
	_, err = os.Stat(outFile)
	assert.Equal(t, err, nil)
}
