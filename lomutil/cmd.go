/*
Copyright © 2026 the LOM authors.
This file is part of LOM.

LOM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

LOM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with LOM.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package lomutil holds the configuration and command-line interface for
// the LOM layered ocean model.
package lomutil

import (
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/oceanmodel/lom"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	Cfg = viper.New()

	// Options are the configuration options available to LOM.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "MeshData",
			usage: `
              MeshData is the path to the NetCDF file holding the model
              mesh: the per-column active layer counts, the resting layer
              thicknesses, and the vertical-coordinate movement weights.
              It may be a local path or an HTTP URL.`,
			defaultVal: "mesh.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), checkCmd.Flags()},
		},
		{
			name: "ForcingData",
			usage: `
              ForcingData is the path to an optional NetCDF file holding
              the initial sea-surface height, the barotropic divergence,
              and the high-frequency thickness perturbation. Missing
              variables default to zero. It may be a local path or an
              HTTP URL.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the computed layer thickness
              field is written as a NetCDF file.`,
			defaultVal: "thickness.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the simulation log file. If it is
              left blank, the log is written next to the OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "NumIterations",
			usage: `
              NumIterations is the number of time steps to run.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Dt",
			usage: `
              Dt is the time step length in seconds.`,
			defaultVal: 300.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ALE.UseFreqFilteredThickness",
			usage: `
              ALE.UseFreqFilteredThickness enables the z-tilde stage,
              which removes high-frequency sea-surface signal from the
              vertical coordinate using the perturbation supplied in
              ForcingData.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), checkCmd.Flags()},
		},
		{
			name: "ALE.UseMinMaxThickness",
			usage: `
              ALE.UseMinMaxThickness enables the min/max redistribution
              stage, which keeps each layer's thickness within its
              configured bounds while conserving each column's total.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), checkCmd.Flags()},
		},
		{
			name: "ALE.MinThickness",
			usage: `
              ALE.MinThickness is the smallest allowed layer thickness in
              meters.`,
			defaultVal: 0.001,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), checkCmd.Flags()},
		},
		{
			name: "ALE.MaxThicknessFactor",
			usage: `
              ALE.MaxThicknessFactor is the largest allowed ratio of a
              layer's thickness to its resting thickness.`,
			defaultVal: 6.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), checkCmd.Flags()},
		},
	}

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(checkCmd)
}

// outChan returns a channel printing to standard output.
func outChan() chan string {
	outChan := make(chan string)
	go func() {
		for {
			msg := <-outChan
			fmt.Print(msg)
		}
	}()
	return outChan
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("lom: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "lom",
	Short: "A layered ocean model vertical-coordinate core.",
	Long: `LOM computes the arbitrary Lagrangian-Eulerian (ALE) target layer
thickness distribution for a column-based unstructured ocean mesh.
Use the subcommands specified below to access the model functionality.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'LOM_var'
where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of LOM.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("LOM v%s\n", lom.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that runs a time integration of the thickness core.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run integrates the ALE thickness solver through time using the
configured mesh, forcing, and time step, and writes the final layer
thickness field to the output file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()

		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		return Run(
			checkLogFile(Cfg.GetString("LogFile"), outputFile),
			outputFile,
			maybeDownload(os.ExpandEnv(Cfg.GetString("MeshData")), outChan),
			maybeDownload(os.ExpandEnv(Cfg.GetString("ForcingData")), outChan),
			Cfg.GetInt("NumIterations"),
			Cfg.GetFloat64("Dt"),
			aleConfig(Cfg),
		)
	},
	DisableAutoGenTag: true,
}

// checkCmd is a command that validates the mesh and the thickness bounds
// configuration without running a simulation.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the mesh and configuration.",
	Long: `check reads the mesh and verifies that the configured thickness
bounds can be satisfied for every active layer, without running a
simulation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()
		return Check(
			maybeDownload(os.ExpandEnv(Cfg.GetString("MeshData")), outChan),
			aleConfig(Cfg),
		)
	},
	DisableAutoGenTag: true,
}
