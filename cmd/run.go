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
	"context"
	"fmt"
	"os/exec"

	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gosweep/InputParameters"
	"github.com/notargets/gosweep/casescript"
	"github.com/notargets/gosweep/report"
	"github.com/notargets/gosweep/solver"
	"github.com/notargets/gosweep/sweep"
)

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every mesh and Reynolds number case of a batch file",
	Long: `
Runs the solver once per (mesh, Reynolds number) case, mesh by mesh, and records each
outcome in results/batch_summary.log as soon as the case finishes. Failed cases do not
stop the sweep, the command exits 0 once the summary is printed.

gosweep run -I batch.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			bp  *InputParameters.BatchParameters
			gen *casescript.Generator
		)
		if bp, err = readInput(cmd); err != nil {
			return
		}
		if gen, err = casescript.Load(bp.Template); err != nil {
			return
		}
		out := cmd.OutOrStdout()
		inv := solver.NewInvoker(viper.GetString("solver.binary"), viper.GetInt("solver.threads"), out)
		if envFile := viper.GetString("solver.envFile"); len(envFile) != 0 {
			if err = inv.LoadEnvFile(envFile); err != nil {
				return
			}
		}
		if _, lerr := exec.LookPath(inv.Binary); lerr != nil {
			log.WithError(lerr).Warn("solver not found on PATH, every case will fail")
		}
		if dir, _ := cmd.Flags().GetString("profile"); len(dir) != 0 {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet).Stop()
		}
		keep, _ := cmd.Flags().GetBool("keep-scripts")

		o := sweep.New(bp.RunConfig(), sweep.Options{
			Title:       bp.Title,
			Meshes:      bp.MeshSpecs(),
			Plan:        bp.Plan(),
			ResultsDir:  viper.GetString("results"),
			ScriptDir:   viper.GetString("scripts"),
			KeepScripts: keep,
		}, gen, inv, report.New(out))
		_, err = o.Run(context.Background())
		return
	},
}

func readInput(cmd *cobra.Command) (bp *InputParameters.BatchParameters, err error) {
	var input string
	if input, err = cmd.Flags().GetString("input"); err != nil {
		return
	}
	if len(input) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Example File:%s\n", InputParameters.ExampleFile)
		return nil, fmt.Errorf("must supply a batch file (-I, --input) in YAML format")
	}
	if bp, err = InputParameters.Read(input); err != nil {
		return
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		bp.Print()
	}
	return
}

func addInputFlags(c *cobra.Command) {
	c.Flags().StringP("input", "I", "", "YAML batch file with constants, Template, Meshes and Reynolds list")
	c.Flags().BoolP("verbose", "v", false, "print the parsed batch file")
}

func init() {
	rootCmd.AddCommand(RunCmd)
	addInputFlags(RunCmd)
	RunCmd.Flags().String("solver", "fluent", "solver executable")
	RunCmd.Flags().IntP("threads", "t", 4, "solver thread count")
	RunCmd.Flags().String("env-file", "", "dotenv file with variables for the solver process")
	RunCmd.Flags().String("results", "results", "results directory")
	RunCmd.Flags().String("scripts", ".", "directory for generated case journals")
	RunCmd.Flags().Bool("keep-scripts", true, "keep generated case journals after each case")
	RunCmd.Flags().String("profile", "", "write a CPU profile of the batch driver into this directory")
	_ = viper.BindPFlag("solver.binary", RunCmd.Flags().Lookup("solver"))
	_ = viper.BindPFlag("solver.threads", RunCmd.Flags().Lookup("threads"))
	_ = viper.BindPFlag("solver.envFile", RunCmd.Flags().Lookup("env-file"))
	_ = viper.BindPFlag("results", RunCmd.Flags().Lookup("results"))
	_ = viper.BindPFlag("scripts", RunCmd.Flags().Lookup("scripts"))
}

