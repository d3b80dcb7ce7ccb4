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
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gosweep/InputParameters"
	"github.com/notargets/gosweep/convergence"
	"github.com/notargets/gosweep/ledger"
	"github.com/notargets/gosweep/report"
)

// ClassifyCmd represents the classify command
var ClassifyCmd = &cobra.Command{
	Use:   "classify console.log [console.log...]",
	Short: "Classify existing solver transcripts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		if input, _ := cmd.Flags().GetString("input"); len(input) != 0 {
			var bp *InputParameters.BatchParameters
			if bp, err = InputParameters.Read(input); err != nil {
				return
			}
			threshold = bp.ConvergenceThreshold
		}
		out := cmd.OutOrStdout()
		for _, transcript := range args {
			c := convergence.Classify(transcript, 0, threshold)
			residual := ledger.NA
			if c.HasResidual {
				residual = fmt.Sprintf("%g", c.FinalResidual)
			}
			fmt.Fprintf(out, "%-14s %8d %12s  %s\n", c.Status, c.ActualIterations, residual, transcript)
		}
		return
	},
}

// SummaryCmd represents the summary command
var SummaryCmd = &cobra.Command{
	Use:   "summary [batch_summary.log]",
	Short: "Print the summary of a recorded batch ledger",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			path = filepath.Join(viper.GetString("results"), ledger.FileName)
			rl   *ledger.RunLedger
		)
		if len(args) == 1 {
			path = args[0]
		}
		if rl, err = ledger.Read(path); err != nil {
			return
		}
		report.New(cmd.OutOrStdout()).Summary(rl)
		return
	},
}

func init() {
	rootCmd.AddCommand(ClassifyCmd)
	rootCmd.AddCommand(SummaryCmd)
	ClassifyCmd.Flags().Float64("threshold", InputParameters.DefaultConvergenceThreshold, "continuity residual threshold")
	ClassifyCmd.Flags().StringP("input", "I", "", "YAML batch file to take the threshold from")
}
