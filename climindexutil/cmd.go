/*
Copyright © 2024 the climindex authors.
This file is part of climindex.

climindex is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

climindex is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with climindex.  If not, see <http://www.gnu.org/licenses/>.
*/

package climindexutil

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/climindex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log receives progress messages from the commands.
var Log = logrus.New()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	Log.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})

	dataCmds := func() []*pflag.FlagSet {
		return []*pflag.FlagSet{indexCmd.Flags(), eventsCmd.Flags(), compositeCmd.Flags(),
			seasonalCmd.Flags(), z20Cmd.Flags(), qnetCmd.Flags(), levelCmd.Flags(), extractCmd.Flags()}
	}

	// Options are the configuration options available to climindex.
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
			name: "verbose",
			usage: `
              verbose turns on debug logging.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "input",
			usage: `
              input specifies the NetCDF file to read the input variable from.
              Both NetCDF classic and NetCDF-4 files can be read.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   dataCmds(),
		},
		{
			name: "var",
			usage: `
              var specifies the name of the input variable. For the index,
              events and composite commands it must hold sea surface
              temperature with dimensions (time, lat, lon).`,
			defaultVal: "sst",
			flagsets: []*pflag.FlagSet{indexCmd.Flags(), eventsCmd.Flags(), compositeCmd.Flags(),
				seasonalCmd.Flags(), z20Cmd.Flags(), levelCmd.Flags(), extractCmd.Flags()},
		},
		{
			name: "output",
			usage: `
              output specifies the NetCDF file to write results to.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets: []*pflag.FlagSet{indexCmd.Flags(), compositeCmd.Flags(),
				seasonalCmd.Flags(), z20Cmd.Flags(), qnetCmd.Flags(), levelCmd.Flags(), extractCmd.Flags()},
		},
		{
			name: "indices",
			usage: `
              indices specifies the indices to calculate. Valid options are
              NINO3.4, IOBM, DMI, EIO, WIO, EIO_1 and WIO_1, and the names of any
              indices defined in the file given by --custom.`,
			defaultVal: []string{"NINO3.4", "IOBM", "DMI"},
			flagsets:   []*pflag.FlagSet{indexCmd.Flags()},
		},
		{
			name: "custom",
			usage: `
              custom specifies a TOML file with custom region and index definitions.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{indexCmd.Flags()},
		},
		{
			name: "plot",
			usage: `
              plot specifies a PNG file to plot the indices to. If empty,
              no plot is created.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{indexCmd.Flags()},
		},
		{
			name: "cachesize",
			usage: `
              cachesize specifies the number of index and event results to
              hold in memory.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{indexCmd.Flags(), eventsCmd.Flags()},
		},
		{
			name: "mode",
			usage: `
              mode specifies the climate mode to classify events of, either
              IOD (Indian Ocean Dipole, classified in SON) or ENSO (El Niño
              Southern Oscillation, classified in DJF).`,
			defaultVal: "IOD",
			flagsets:   []*pflag.FlagSet{eventsCmd.Flags(), compositeCmd.Flags()},
		},
		{
			name: "report",
			usage: `
              report specifies a spreadsheet (.xlsx) file to list the events in.
              If empty, events are only logged.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{eventsCmd.Flags()},
		},
		{
			name: "companion",
			usage: `
              companion specifies the NetCDF file holding the variable to
              composite. If empty, the input file is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{compositeCmd.Flags()},
		},
		{
			name: "companionvar",
			usage: `
              companionvar specifies the variable to composite. If empty,
              the input variable itself is composited.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{compositeCmd.Flags()},
		},
		{
			name: "season",
			usage: `
              season specifies the season to average over: DJF, MAM, JJA or SON.`,
			defaultVal: "SON",
			flagsets:   []*pflag.FlagSet{seasonalCmd.Flags()},
		},
		{
			name: "target",
			usage: `
              target specifies the isotherm temperature in °C.`,
			defaultVal: 20.0,
			flagsets:   []*pflag.FlagSet{z20Cmd.Flags()},
		},
		{
			name: "surface",
			usage: `
              surface specifies the surface heat flux variable [W m-2].`,
			defaultVal: "net_sfc_heating",
			flagsets:   []*pflag.FlagSet{qnetCmd.Flags()},
		},
		{
			name: "terms",
			usage: `
              terms specifies the three-dimensional heat flux variables [W m-2]
              to integrate over depth and add to the surface flux.`,
			defaultVal: []string{"frazil_3d"},
			flagsets:   []*pflag.FlagSet{qnetCmd.Flags()},
		},
		{
			name: "level",
			usage: `
              level specifies the depth [m] of the level to select. The
              nearest model level is used.`,
			defaultVal: 105.0,
			flagsets:   []*pflag.FlagSet{levelCmd.Flags()},
		},
		{
			name: "celsius",
			usage: `
              celsius specifies whether to convert the selected level from
              Kelvin to °C.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{levelCmd.Flags()},
		},
		{
			name: "name",
			usage: `
              name specifies the name of the output variable. If empty,
              the input variable name is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{extractCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CLIMINDEX")
	Cfg.AutomaticEnv()

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
	Root.AddCommand(indexCmd)
	Root.AddCommand(eventsCmd)
	Root.AddCommand(compositeCmd)
	Root.AddCommand(seasonalCmd)
	Root.AddCommand(z20Cmd)
	Root.AddCommand(qnetCmd)
	Root.AddCommand(levelCmd)
	Root.AddCommand(extractCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the logging level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("climindex: problem reading configuration file: %v", err)
		}
	}
	if Cfg.GetBool("verbose") {
		Log.SetLevel(logrus.DebugLevel)
	} else {
		Log.SetLevel(logrus.InfoLevel)
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "climindex",
	Short: "Climate mode indices and event composites.",
	Long: `climindex calculates climate mode indices such as the Niño 3.4 index and the
Indian Ocean Dipole Mode Index from gridded sea surface temperature, classifies
positive and negative events, and composites other variables by event year.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CLIMINDEX_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of climindex.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("climindex v%s\n", climindex.Version)
	},
	DisableAutoGenTag: true,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Calculate climate mode indices.",
	Long: `index calculates one or more regional indices from a sea surface temperature
field and writes them to a NetCDF file, and optionally plots them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		return Index(context.Background(),
			os.ExpandEnv(Cfg.GetString("input")),
			Cfg.GetString("var"),
			outputFile,
			os.ExpandEnv(Cfg.GetString("plot")),
			os.ExpandEnv(Cfg.GetString("custom")),
			expandStringSlice(Cfg.GetStringSlice("indices")),
			climindex.NewCache(Cfg.GetInt("cachesize")),
		)
	},
	DisableAutoGenTag: true,
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Classify climate mode events.",
	Long: `events classifies the years of positive and negative Indian Ocean Dipole or
El Niño Southern Oscillation events from a sea surface temperature field.
Events are the seasonal index values above the 80th or at or below the 20th
percentile of all years.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, err := Events(context.Background(),
			os.ExpandEnv(Cfg.GetString("input")),
			Cfg.GetString("var"),
			Cfg.GetString("mode"),
			os.ExpandEnv(Cfg.GetString("report")),
			climindex.NewCache(Cfg.GetInt("cachesize")),
		)
		return err
	},
	DisableAutoGenTag: true,
}

var compositeCmd = &cobra.Command{
	Use:   "composite",
	Short: "Composite a variable by event year.",
	Long: `composite calculates December-anchored quarterly means of a companion variable
and collects them for every year with a positive and every year with a
negative event. The two composites are written to separate files named after
the output file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		_, _, err = Composite(
			os.ExpandEnv(Cfg.GetString("input")),
			Cfg.GetString("var"),
			os.ExpandEnv(Cfg.GetString("companion")),
			Cfg.GetString("companionvar"),
			Cfg.GetString("mode"),
			outputFile,
		)
		return err
	},
	DisableAutoGenTag: true,
}

var seasonalCmd = &cobra.Command{
	Use:   "seasonal",
	Short: "Calculate a seasonal mean.",
	Long:  `seasonal calculates the mean of a variable over one season of every year.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		return Seasonal(
			os.ExpandEnv(Cfg.GetString("input")),
			Cfg.GetString("var"),
			Cfg.GetString("season"),
			outputFile,
		)
	},
	DisableAutoGenTag: true,
}

var z20Cmd = &cobra.Command{
	Use:   "z20",
	Short: "Calculate isotherm depth.",
	Long: `z20 calculates the depth of an isotherm, by default the 20°C isotherm, from
a potential temperature field with a depth dimension.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		return Z20(
			os.ExpandEnv(Cfg.GetString("input")),
			Cfg.GetString("var"),
			Cfg.GetFloat64("target"),
			outputFile,
		)
	},
	DisableAutoGenTag: true,
}

var qnetCmd = &cobra.Command{
	Use:   "qnet",
	Short: "Calculate net heat flux.",
	Long: `qnet adds the depth-integrated sum of one or more three-dimensional heat
flux terms to a surface heat flux.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		return QNet(
			os.ExpandEnv(Cfg.GetString("input")),
			Cfg.GetString("surface"),
			Cfg.GetStringSlice("terms"),
			outputFile,
		)
	},
	DisableAutoGenTag: true,
}

var levelCmd = &cobra.Command{
	Use:   "level",
	Short: "Select a depth level.",
	Long: `level selects the model level nearest to a given depth from a variable with
a depth dimension, optionally converting it from Kelvin to °C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		return Level(
			os.ExpandEnv(Cfg.GetString("input")),
			Cfg.GetString("var"),
			Cfg.GetFloat64("level"),
			Cfg.GetBool("celsius"),
			outputFile,
		)
	},
	DisableAutoGenTag: true,
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Copy a variable to a new file.",
	Long: `extract copies a single variable, such as a wind stress component, to a new
NetCDF file, optionally under a new name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("output"))
		if err != nil {
			return err
		}
		return Extract(
			os.ExpandEnv(Cfg.GetString("input")),
			Cfg.GetString("var"),
			Cfg.GetString("name"),
			outputFile,
		)
	},
	DisableAutoGenTag: true,
}
