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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/notargets/gosweep/InputParameters"
	"github.com/notargets/gosweep/physics"
	"github.com/notargets/gosweep/types"
)

// DeriveCmd represents the derive command
var DeriveCmd = &cobra.Command{
	Use:   "derive Re [Re...]",
	Short: "Print inlet velocity and iteration budget for Reynolds numbers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		rc := types.RunConfig{
			Diameter:             InputParameters.DefaultDiameter,
			Density:              InputParameters.DefaultDensity,
			Viscosity:            InputParameters.DefaultViscosity,
			ConvergenceThreshold: InputParameters.DefaultConvergenceThreshold,
		}
		if input, _ := cmd.Flags().GetString("input"); len(input) != 0 {
			var bp *InputParameters.BatchParameters
			if bp, err = InputParameters.Read(input); err != nil {
				return
			}
			rc = bp.RunConfig()
		}
		out := cmd.OutOrStdout()
		nu := rc.KinematicViscosity()
		fmt.Fprintf(out, "nu = %.4e m^2/s, D = %g m\n", nu, rc.Diameter)
		fmt.Fprintf(out, "%10s%16s%10s\n", "Re", "U (m/s)", "Iters")
		for _, arg := range args {
			var Re float64
			if Re, err = strconv.ParseFloat(arg, 64); err != nil || Re < 0 {
				return fmt.Errorf("invalid Reynolds number %q", arg)
			}
			fmt.Fprintf(out, "%10s%16s%10d\n", types.FormatRe(Re),
				types.FormatVelocity(physics.Velocity(Re, nu, rc.Diameter)), physics.IterationBudget(Re))
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(DeriveCmd)
	DeriveCmd.Flags().StringP("input", "I", "", "YAML batch file to take the constants from")
}
