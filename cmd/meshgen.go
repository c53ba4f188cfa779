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
	"bufio"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/neurogeom/retreg/flatten"
	"github.com/neurogeom/retreg/mesh"
	"github.com/neurogeom/retreg/meshgen"
	"github.com/neurogeom/retreg/readfiles"
	"github.com/neurogeom/retreg/template"
)

// meshgenCmd represents the meshgen command
var meshgenCmd = &cobra.Command{
	Use:   "meshgen",
	Short: "Generate a synthetic test mesh and optional synthetic observations",
	Long: `Generate a synthetic test mesh and optional synthetic observations.

The mesh is a triangulated disk, optionally domed into a paraboloid cap,
with vertex 0 at the center so it can serve directly as the pole. With
--obsFile the disk is flattened and sampled through the retinotopy
template, producing a ground-truth observation table for end-to-end runs.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		rings, _ := cmd.Flags().GetInt("rings")
		sectors, _ := cmd.Flags().GetInt("sectors")
		radius, _ := cmd.Flags().GetFloat64("radius")
		bump, _ := cmd.Flags().GetFloat64("bump")
		noise, _ := cmd.Flags().GetFloat64("noise")
		seed, _ := cmd.Flags().GetInt64("seed")
		meshFile, _ := cmd.Flags().GetString("outputFile")
		obsFile, _ := cmd.Flags().GetString("obsFile")

		msh := meshgen.Disk(rings, sectors, radius, bump)
		if err = readfiles.WriteOFF(meshFile, msh); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		fmt.Printf("wrote %s: %d vertices, %d faces\n", meshFile, msh.Nv, msh.Nf)
		if len(obsFile) != 0 {
			if err = writeSyntheticObservations(obsFile, msh, noise, seed); err != nil {
				fmt.Printf("error: %s\n", err.Error())
				os.Exit(1)
			}
		}
	},
}

// writeSyntheticObservations flattens the disk around its center vertex and
// samples the template's forward prediction at each flattened position,
// perturbed with zero-mean gaussian noise of the given size.
func writeSyntheticObservations(filename string, msh *mesh.Mesh, noise float64, seed int64) (err error) {
	fl := flatten.NewFlattener(flatten.DistancePreserving)
	fm, err := fl.Flatten(msh, 0)
	if err != nil {
		return err
	}
	md := template.NewModel(template.DefaultParameters())
	rng := rand.New(rand.NewSource(seed))

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("unable to create observation file %s: %w", filename, err)
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	defer w.Flush()

	fmt.Fprintf(w, "# synthetic observations: noise %g degrees, seed %d\n", noise, seed)
	fmt.Fprintf(w, "# vertex polar-angle eccentricity weight\n")
	var count int
	for v := 0; v < msh.Nv; v++ {
		theta, rho, area := md.CortexToAngle(fm.X[v], fm.Y[v])
		if !area.InROI() {
			continue
		}
		theta = math.Min(180, math.Max(0, theta+noise*rng.NormFloat64()))
		rho = math.Max(0, rho+noise*rng.NormFloat64()/10)
		fmt.Fprintf(w, "%d %.6f %.6f 1.0\n", v, theta, rho)
		count++
	}
	fmt.Printf("wrote %s: %d observations\n", filename, count)
	return
}

func init() {
	rootCmd.AddCommand(meshgenCmd)
	meshgenCmd.Flags().Int("rings", 8, "concentric vertex rings around the center")
	meshgenCmd.Flags().Int("sectors", 24, "vertices per ring")
	meshgenCmd.Flags().Float64("radius", 10, "disk radius")
	meshgenCmd.Flags().Float64("bump", 0, "paraboloid height at the center, 0 = flat")
	meshgenCmd.Flags().Float64("noise", 0, "gaussian noise on synthetic observations, degrees")
	meshgenCmd.Flags().Int64("seed", 1, "noise seed")
	meshgenCmd.Flags().StringP("outputFile", "o", "disk.off", "mesh output file")
	meshgenCmd.Flags().String("obsFile", "", "also write a synthetic observation table here")
}
