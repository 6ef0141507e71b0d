/*
Copyright © 2018 the STJ authors.
This file is part of STJ.

STJ is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

STJ is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with STJ.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package stjutil holds the configuration layer and run driver for the
// stj command-line interface.
package stjutil

import (
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/stj"
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
	// Options are the configuration options available to STJ.
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
			name: "LogLevel",
			usage: `
              LogLevel sets the logging verbosity (debug, info, warning,
              error).`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InputFile",
			usage: `
              InputFile is the path to the NetCDF file holding the gridded
              input fields.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory where one output file per metric
              is written.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "Methods",
			usage: `
              Methods lists the jet detection metrics to run. Recognized
              names are PVGrad, DavisBirner, UMax and KangPolvani.`,
			defaultVal: []string{"PVGrad"},
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "Sequential",
			usage: `
              Sequential switches the metrics from the parallel batched
              evaluation to a per-cell reference loop. Both produce
              identical results; the loop exists for debugging.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "Data.TimeName",
			usage: `
              Data.TimeName is the name of the time axis variable in the
              input file.`,
			defaultVal: "time",
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "Data.LevName",
			usage: `
              Data.LevName is the name of the vertical level axis variable
              in the input file.`,
			defaultVal: "lev",
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "Data.LatName",
			usage: `
              Data.LatName is the name of the latitude axis variable in the
              input file.`,
			defaultVal: "lat",
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "Data.LonName",
			usage: `
              Data.LonName is the name of the longitude axis variable in
              the input file.`,
			defaultVal: "lon",
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "Data.IPVName",
			usage: `
              Data.IPVName is the name of the isentropic potential
              vorticity variable in the input file.`,
			defaultVal: "ipv",
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "Data.UwndName",
			usage: `
              Data.UwndName is the name of the zonal wind variable in the
              input file.`,
			defaultVal: "uwnd",
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "Data.VwndName",
			usage: `
              Data.VwndName is the name of the meridional wind variable in
              the input file.`,
			defaultVal: "vwnd",
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "Data.TropThetaName",
			usage: `
              Data.TropThetaName is the name of the tropopause potential
              temperature variable in the input file.`,
			defaultVal: "trop_theta",
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "PVValue",
			usage: `
              PVValue is the potential vorticity magnitude defining the
              dynamical tropopause [PVU]. It is negated for the southern
              hemisphere.`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "FitDeg",
			usage: `
              FitDeg is the degree of the polynomial fitted to the
              tropopause potential temperature by the PVGrad metric.`,
			defaultVal: 6,
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "Poly",
			usage: `
              Poly selects the polynomial basis used by the PVGrad metric:
              chebyshev, legendre or polynomial.`,
			defaultVal: "chebyshev",
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "MinLat",
			usage: `
              MinLat is the equatorward bound of the latitude band searched
              for the jet, as an unsigned magnitude in degrees.`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "MaxLat",
			usage: `
              MaxLat is the poleward bound of the latitude band searched
              for the jet, as an unsigned magnitude in degrees.`,
			defaultVal: 65.0,
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "ZonalOpt",
			usage: `
              ZonalOpt selects the zonal reduction of the output: mean,
              median, or none to keep the longitude axis.`,
			defaultVal: "mean",
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "ThetaS",
			usage: `
              ThetaS is the lowest isentropic level used for the tropopause
              interpolation [K]. Zero together with ThetaE means no
              restriction.`,
			defaultVal: 300.0,
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "ThetaE",
			usage: `
              ThetaE is the highest isentropic level used for the
              tropopause interpolation [K].`,
			defaultVal: 400.0,
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "DavisBirner.UpperPLevel",
			usage: `
              DavisBirner.UpperPLevel is the top of the pressure layer
              searched by the DavisBirner metric [Pa].`,
			defaultVal: 10000.0,
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "DavisBirner.LowerPLevel",
			usage: `
              DavisBirner.LowerPLevel is the bottom of the pressure layer
              searched by the DavisBirner metric [Pa].`,
			defaultVal: 40000.0,
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "DavisBirner.SurfPLevel",
			usage: `
              DavisBirner.SurfPLevel is the pressure level whose wind is
              subtracted as the surface wind by the DavisBirner metric
              [Pa].`,
			defaultVal: 85000.0,
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "PresLevel",
			usage: `
              PresLevel is the single pressure level searched by the UMax
              metric [Pa].`,
			defaultVal: 25000.0,
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
		{
			name: "PFac",
			usage: `
              PFac converts pascals to the pressure units of the input
              file's level axis (e.g. 100 when the file uses hPa), used by
              the KangPolvani metric.`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{findCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("STJ")

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
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
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
	Root.AddCommand(findCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("stj: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Log is the logger used by the commands; it defaults to the logrus
// standard logger.
var Log = logrus.StandardLogger()

// Root is the main command.
var Root = &cobra.Command{
	Use:   "stj",
	Short: "A subtropical jet stream finder.",
	Long: `STJ locates the subtropical jet stream in gridded atmospheric fields
using one of several detection metrics.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'STJ_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if err := setConfig(); err != nil {
			return err
		}
		level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
		if err != nil {
			return fmt.Errorf("stj: parsing log level: %v", err)
		}
		Log.SetLevel(level)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of STJ.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("STJ v%s\n", stj.Version)
	},
	DisableAutoGenTag: true,
}

// findCmd runs the configured jet detection metrics.
var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find the subtropical jet.",
	Long: `find loads the input fields, locates the subtropical jet in both
hemispheres with each of the configured metrics, and writes one output file
per metric to the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := JetConfig(Cfg)
		if err != nil {
			return err
		}
		methods := Cfg.GetStringSlice("Methods")
		inputFile := os.ExpandEnv(Cfg.GetString("InputFile"))
		outputDir := os.ExpandEnv(Cfg.GetString("OutputDir"))
		return Run(cfg, methods, inputFile, outputDir, os.Getenv("STJ_REVISION"), Log)
	},
	DisableAutoGenTag: true,
}
