/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/neurogeom/retreg/RunParameters"
	"github.com/neurogeom/retreg/flatten"
	"github.com/neurogeom/retreg/mesh"
	"github.com/neurogeom/retreg/readfiles"
	"github.com/neurogeom/retreg/register"
	"github.com/neurogeom/retreg/template"
)

type RegisterRun struct {
	MeshFiles  []string
	ObsFiles   []string
	ParamsFile string
	OutputFile string
	OutputDir  string
	Profile    bool
	Verbose    bool
}

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Fit the retinotopy template to one or more subject meshes",
	Long: `Fit the retinotopy template to one or more subject meshes.

Each subject is a surface mesh plus an optional observation table; subjects
are processed concurrently and each produces a per-vertex retinotopy map.
Without observations (or with RunMode: template-only) the output is the
pure anatomical template prediction.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			rr  = &RegisterRun{}
			err error
		)
		if rr.MeshFiles, err = cmd.Flags().GetStringSlice("meshFile"); err != nil {
			panic(err)
		}
		if rr.ObsFiles, err = cmd.Flags().GetStringSlice("obsFile"); err != nil {
			panic(err)
		}
		rr.ParamsFile, _ = cmd.Flags().GetString("runParametersFile")
		rr.OutputFile, _ = cmd.Flags().GetString("outputFile")
		rr.OutputDir, _ = cmd.Flags().GetString("outputDir")
		rr.Profile, _ = cmd.Flags().GetBool("profile")
		rr.Verbose, _ = cmd.Flags().GetBool("verbose")
		rp := processRunInput(rr)
		if err = RunRegister(rr, rp); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func processRunInput(rr *RegisterRun) (rp *RunParameters.RunParameters) {
	var (
		err      error
		willExit bool
	)
	if len(rr.MeshFiles) == 0 {
		fmt.Printf("error: must supply at least one mesh file (-F, --meshFile) in ASCII OFF format\n")
		willExit = true
	}
	if len(rr.ObsFiles) != 0 && len(rr.ObsFiles) != len(rr.MeshFiles) {
		fmt.Printf("error: got %d observation files for %d meshes, want one per mesh or none\n",
			len(rr.ObsFiles), len(rr.MeshFiles))
		willExit = true
	}
	if len(rr.MeshFiles) > 1 && len(rr.OutputFile) != 0 {
		fmt.Printf("error: -o names a single output file, use -d (--outputDir) with multiple meshes\n")
		willExit = true
	}
	rp = RunParameters.DefaultRunParameters()
	if len(rr.ParamsFile) != 0 {
		var data []byte
		if data, err = ioutil.ReadFile(rr.ParamsFile); err != nil {
			panic(err)
		}
		if err = rp.Parse(data); err != nil {
			panic(err)
		}
	} else {
		exampleFile := `
########################################
Title: "Left hemisphere, subject 04"
PoleVertex: 1287
MaxRadius: 55
FlattenMethod: distance # Can be "conformal" or "area"
RunMode: data           # Can be "template-only"
WData: 1
WSmooth: 0.5
WTopo: 2
MaxIterations: 500
Seed: 1
########################################
`
		fmt.Printf("no run parameters file (-I), using defaults. Example File:%s\n", exampleFile)
	}
	if err = rp.Validate(); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		willExit = true
	}
	if willExit {
		os.Exit(1)
	}
	if rr.Verbose {
		rp.Print()
	}
	return
}

func RunRegister(rr *RegisterRun, rp *RunParameters.RunParameters) error {
	if rr.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}
	var (
		wg   sync.WaitGroup
		mtx  sync.Mutex
		errs []error
	)
	for i, meshFile := range rr.MeshFiles {
		var obsFile string
		if len(rr.ObsFiles) != 0 {
			obsFile = rr.ObsFiles[i]
		}
		outFile := rr.OutputFile
		if len(outFile) == 0 {
			base := strings.TrimSuffix(filepath.Base(meshFile), filepath.Ext(meshFile))
			outFile = filepath.Join(rr.OutputDir, base+".map")
		}
		wg.Add(1)
		go func(meshFile, obsFile, outFile string) {
			defer wg.Done()
			if err := registerSubject(meshFile, obsFile, outFile, rp, rr.Verbose); err != nil {
				mtx.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", meshFile, err))
				mtx.Unlock()
			}
		}(meshFile, obsFile, outFile)
	}
	wg.Wait()
	if len(errs) != 0 {
		for _, err := range errs {
			fmt.Printf("subject failed: %s\n", err.Error())
		}
		return fmt.Errorf("%d of %d subjects failed", len(errs), len(rr.MeshFiles))
	}
	return nil
}

/*
registerSubject runs the whole pipeline for one subject: read the mesh,
extract the patch around the pole, flatten it, register the template
against the observations and write the resulting map. Mesh integrity and
pole reachability problems are fatal for the subject; recoverable
conditions travel as flags inside the written map.
*/
func registerSubject(meshFile, obsFile, outFile string,
	rp *RunParameters.RunParameters, verbose bool) (err error) {
	VX, VY, VZ, EToV, err := readfiles.ReadOFF(meshFile)
	if err != nil {
		return err
	}
	msh, err := mesh.New(VX, VY, VZ, EToV)
	if err != nil {
		return err
	}
	patch, err := msh.SubmeshWithin(rp.PoleVertex, rp.MaxRadius)
	if err != nil {
		return err
	}
	pole := patch.LocalID(rp.PoleVertex)

	fl := flatten.NewFlattener(flatten.NewMethod(rp.FlattenMethod))
	fl.MaxIterations = rp.FlattenMaxIterations
	fl.Tolerance = rp.FlattenTolerance
	fl.Verbose = verbose
	fm, err := fl.Flatten(patch, pole)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Printf("%s: flattened %d vertices, energy %.4e after %d iterations\n",
			meshFile, patch.Nv, fm.Energy, fm.Iterations)
	}

	var obs register.ObservationSet
	if len(obsFile) != 0 {
		var subjectObs register.ObservationSet
		if subjectObs, err = readfiles.ReadObservations(obsFile); err != nil {
			return err
		}
		// Observation vertex ids refer to the subject mesh; remap onto the
		// extracted patch and drop what falls outside it
		obs = make(register.ObservationSet)
		for v := 0; v < patch.Nv; v++ {
			if ob, ok := subjectObs[patch.ParentIDs[v]]; ok {
				obs[v] = ob
			}
		}
	}

	cfg := register.Config{
		Weights:       register.Weights{Data: rp.WData, Smooth: rp.WSmooth, Topo: rp.WTopo},
		Tolerance:     rp.Tolerance,
		Window:        5,
		MaxIterations: rp.MaxIterations,
		StepRetries:   20,
		InitialStep:   1.0,
		Seed:          rp.Seed,
		Mode:          register.NewRunMode(rp.RunMode),
		ProcLimit:     rp.Parallelism,
		Verbose:       verbose,
	}
	md := template.NewModel(template.DefaultParameters())
	rm := register.NewOptimizer(fm, md, obs, cfg).Run()
	if rm.Flags.Any() {
		fmt.Printf("%s: finished with flags: flattening-non-converged=%v convergence-failure=%v boundary-inconsistency=%v\n",
			meshFile, rm.Flags.FlatteningNonConverged, rm.Flags.ConvergenceFailure,
			rm.Flags.BoundaryInconsistency)
	}
	return readfiles.WriteRetinotopyMap(outFile, patch, rm)
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringSliceP("meshFile", "F", nil, "subject mesh in ASCII OFF format, repeat for batch runs")
	registerCmd.Flags().StringSliceP("obsFile", "O", nil, "observation table: vertex, polar angle, eccentricity, weight")
	registerCmd.Flags().StringP("runParametersFile", "I", "", "YAML file for run parameters like:\n\t- PoleVertex\n\t- WData, WSmooth, WTopo")
	registerCmd.Flags().StringP("outputFile", "o", "", "output map file (single subject only)")
	registerCmd.Flags().StringP("outputDir", "d", ".", "directory for output maps, named after each mesh")
	registerCmd.Flags().Bool("profile", false, "write a CPU profile for the run")
}
