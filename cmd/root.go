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
	"io"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gosweep/logging"
)

var (
	cfgFile   string
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gosweep",
	Short: "Reynolds number sweeps of an external CFD solver",
	Long: `
Generates one solver journal per mesh and Reynolds number, runs the solver in batch
mode for each case and classifies convergence from the console transcript.

gosweep run -I batch.yaml`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		logCloser, err = logging.Setup(logging.Config{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
			File:   viper.GetString("log.file"),
		})
		if err == nil && len(viper.ConfigFileUsed()) != 0 {
			log.WithField("file", viper.ConfigFileUsed()).Info("using config file")
		}
		return
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

// run closes the log file whether or not the command succeeded, cobra skips post-run hooks on error
func run() (err error) {
	err = rootCmd.Execute()
	closeLog()
	return
}

func closeLog() {
	if logCloser == nil {
		return
	}
	if cerr := logCloser.Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "closing log: %s\n", cerr.Error())
	}
	logCloser = nil
	log.SetOutput(os.Stderr)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gosweep.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: error, warn, info, debug")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().String("log-file", "", "append logs to this file instead of stderr")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))

	viper.SetDefault("solver.binary", "fluent")
	viper.SetDefault("solver.threads", 4)
	viper.SetDefault("results", "results")
	viper.SetDefault("scripts", ".")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".gosweep" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".gosweep")
	}

	viper.SetEnvPrefix("gosweep")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || cfgFile != "" {
			fmt.Fprintf(os.Stderr, "error reading config file: %s\n", err.Error())
			os.Exit(1)
		}
	}
}
