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
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gosweep/InputParameters"
	"github.com/notargets/gosweep/casescript"
	"github.com/notargets/gosweep/physics"
	"github.com/notargets/gosweep/sweep"
	"github.com/notargets/gosweep/types"
)

// PlanCmd represents the plan command
var PlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "List the cases of a batch file without running anything",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var bp *InputParameters.BatchParameters
		if bp, err = readInput(cmd); err != nil {
			return
		}
		var (
			rc      = bp.RunConfig()
			meshes  = bp.MeshSpecs()
			plan    = bp.Plan()
			results = viper.GetString("results")
			scripts = viper.GetString("scripts")
			total   = len(meshes) * len(plan)
			index   int
		)
		out := cmd.OutOrStdout()
		if _, terr := os.Stat(bp.Template); terr != nil {
			fmt.Fprintf(out, "WARNING: template [%s] not found\n", bp.Template)
		}
		fmt.Fprintf(out, "Kinematic viscosity = %.4e m^2/s, %d cases\n\n", rc.KinematicViscosity(), total)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tMesh\tRe\tVelocity\tMaxIters\tScript\tTranscript")
		for _, mesh := range meshes {
			if _, serr := os.Stat(mesh.Path); serr != nil {
				fmt.Fprintf(tw, "-\t%s\t(missing %s, %d cases skipped)\t\t\t\t\n", mesh.Name, mesh.Path, len(plan))
				index += len(plan)
				continue
			}
			for _, Re := range plan {
				index++
				cs := physics.DeriveCase(rc, mesh, Re)
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n", index, mesh.Name, types.FormatRe(Re),
					types.FormatVelocity(cs.Velocity), cs.MaxIterations,
					filepath.Join(scripts, casescript.ScriptName(cs)), sweep.TranscriptPath(results, cs))
			}
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(PlanCmd)
	addInputFlags(PlanCmd)
}
