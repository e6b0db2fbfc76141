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
	"path/filepath"
	"strings"

	"github.com/ctessum/unit"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/climindex"
	"github.com/spatialmodel/climindex/ncio"
)

// readSST reads a sea surface temperature field and normalizes its
// longitudes.
func readSST(inputFile, variable string) (*climindex.Field, error) {
	if inputFile == "" {
		return nil, fmt.Errorf("climindex: you need to specify an input file")
	}
	Log.WithFields(logrus.Fields{"file": inputFile, "variable": variable}).Info("reading input")
	f, err := ncio.ReadField(inputFile, variable)
	if err != nil {
		return nil, err
	}
	return climindex.NormalizeLongitude(f)
}

// create creates the named file and calls write with it.
func create(path string, write func(*os.File) error) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("climindex: creating output file: %v", err)
	}
	if err := write(w); err != nil {
		w.Close()
		return err
	}
	Log.WithField("file", path).Info("wrote output")
	return w.Close()
}

// Index calculates the named indices of the variable in inputFile
// and writes them to outputFile. Names not among the built-in indices
// are looked up in the custom index file customFile. If plotFile is
// not empty, the indices are also plotted to it.
func Index(ctx context.Context, inputFile, variable, outputFile, plotFile, customFile string, names []string, cache *climindex.Cache) error {
	if len(names) == 0 {
		return fmt.Errorf("climindex: no indices specified")
	}
	custom := make(map[string]*climindex.CustomIndex)
	if customFile != "" {
		c, err := LoadCustomIndices(customFile)
		if err != nil {
			return err
		}
		for _, ci := range c {
			custom[strings.ToUpper(ci.Name)] = ci
		}
	}
	sst, err := readSST(inputFile, variable)
	if err != nil {
		return err
	}
	series := make([]*climindex.Series, len(names))
	for i, name := range names {
		if ci, ok := custom[strings.ToUpper(name)]; ok {
			series[i], err = cache.CustomIndex(ctx, ci, sst)
		} else {
			series[i], err = cache.Index(ctx, name, sst)
		}
		if err != nil {
			return err
		}
		Log.WithFields(logrus.Fields{"index": series[i].Name, "samples": series[i].Len()}).Info("calculated index")
	}
	if err := create(outputFile, func(w *os.File) error { return ncio.WriteSeries(w, series...) }); err != nil {
		return err
	}
	if plotFile != "" {
		if err := PlotSeries(plotFile, series...); err != nil {
			return err
		}
		Log.WithField("file", plotFile).Info("wrote plot")
	}
	return nil
}

// Events classifies the events of the given climate mode in the sea
// surface temperature variable in inputFile. If reportFile is not
// empty, the events are listed in a spreadsheet written to it.
func Events(ctx context.Context, inputFile, variable, mode, reportFile string, cache *climindex.Cache) (negative, positive *climindex.EventSet, err error) {
	sst, err := readSST(inputFile, variable)
	if err != nil {
		return nil, nil, err
	}
	negative, positive, err = cache.Events(ctx, mode, sst)
	if err != nil {
		return nil, nil, err
	}
	Log.WithFields(logrus.Fields{
		"mode":     strings.ToUpper(mode),
		"season":   positive.Season.String(),
		"lower":    positive.Lower,
		"upper":    positive.Upper,
		"positive": positive.Years(),
		"negative": negative.Years(),
	}).Info("classified events")
	if reportFile != "" {
		if err := WriteEventReport(reportFile, mode, negative, positive); err != nil {
			return nil, nil, err
		}
		Log.WithField("file", reportFile).Info("wrote event report")
	}
	return negative, positive, nil
}

// compositeNames are the names of the positive and negative composites
// of each climate mode.
var compositeNames = map[string][2]string{
	"IOD":  {"positive", "negative"},
	"ENSO": {"elnino", "lanina"},
}

// CompositeFiles returns the files that Composite writes the positive
// and negative composites to.
func CompositeFiles(outputFile, mode string) (pos, neg string, err error) {
	n, ok := compositeNames[strings.ToUpper(mode)]
	if !ok {
		return "", "", fmt.Errorf("climindex: unknown climate mode %q; valid options are IOD and ENSO", mode)
	}
	ext := filepath.Ext(outputFile)
	base := strings.TrimSuffix(outputFile, ext)
	return base + "_" + n[0] + ext, base + "_" + n[1] + ext, nil
}

// Composite composites companionVar from companionFile by the events of
// the given climate mode in the sea surface temperature in inputFile.
// An empty companionFile or companionVar defaults to the input file or
// variable. The positive and negative composites are written to the
// files given by CompositeFiles.
func Composite(inputFile, variable, companionFile, companionVar, mode, outputFile string) (pos, neg *climindex.Field, err error) {
	posFile, negFile, err := CompositeFiles(outputFile, mode)
	if err != nil {
		return nil, nil, err
	}
	sst, err := readSST(inputFile, variable)
	if err != nil {
		return nil, nil, err
	}
	var companion *climindex.Field
	if companionFile != "" || companionVar != "" {
		if companionFile == "" {
			companionFile = inputFile
		}
		if companionVar == "" {
			companionVar = variable
		}
		Log.WithFields(logrus.Fields{"file": companionFile, "variable": companionVar}).Info("reading companion")
		if companion, err = ncio.ReadField(companionFile, companionVar); err != nil {
			return nil, nil, err
		}
		if _, err := companion.Axis(climindex.LonDim); err == nil {
			if companion, err = climindex.NormalizeLongitude(companion); err != nil {
				return nil, nil, err
			}
		}
	} else {
		companionVar = variable
	}
	if strings.ToUpper(mode) == "ENSO" {
		pos, neg, err = climindex.ENSOComposites(sst, companion)
	} else {
		pos, neg, err = climindex.IODComposites(sst, companion)
	}
	if err != nil {
		return nil, nil, err
	}
	Log.WithFields(logrus.Fields{"positive": pos.Len(), "negative": neg.Len()}).Info("composited")
	if err := create(posFile, func(w *os.File) error { return ncio.WriteField(w, companionVar, pos) }); err != nil {
		return nil, nil, err
	}
	if err := create(negFile, func(w *os.File) error { return ncio.WriteField(w, companionVar, neg) }); err != nil {
		return nil, nil, err
	}
	return pos, neg, nil
}

// Seasonal writes the mean of variable over the given season of every
// year to outputFile.
func Seasonal(inputFile, variable, season, outputFile string) error {
	s, err := climindex.ParseSeason(season)
	if err != nil {
		return err
	}
	v, err := ncio.ReadVariable(inputFile, variable)
	if err != nil {
		return err
	}
	m, err := climindex.SeasonalMean(v.Field, s)
	if err != nil {
		return err
	}
	return create(outputFile, func(w *os.File) error {
		return ncio.Write(w, map[string]ncio.Variable{variable: {
			Field:       m,
			Description: fmt.Sprintf("%s mean of %s", s, variable),
			Units:       v.Units,
		}})
	})
}

// Z20 writes the depth of the target isotherm [°C] in the temperature
// variable to outputFile.
func Z20(inputFile, variable string, target float64, outputFile string) error {
	v, err := ncio.ReadVariable(inputFile, variable)
	if err != nil {
		return err
	}
	if err := ncio.CheckUnits(v.Units, unit.Kelvin); err != nil {
		return fmt.Errorf("climindex: variable %s: %v", variable, err)
	}
	t := target
	if !ncio.IsCelsius(v.Units) {
		t += climindex.ZeroCelsius
	}
	z, err := climindex.Isosurface(v.Field, t, climindex.DepthDim)
	if err != nil {
		return err
	}
	return create(outputFile, func(w *os.File) error {
		return ncio.Write(w, map[string]ncio.Variable{"z20": {
			Field:       z,
			Description: fmt.Sprintf("depth of the %g°C isotherm", target),
			Units:       "m",
		}})
	})
}

// wattPerMeter2 are the dimensions of a heat flux.
var wattPerMeter2 = unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -3}

// QNet writes the surface heat flux plus the depth-integrated heat
// flux terms to outputFile.
func QNet(inputFile, surface string, terms []string, outputFile string) error {
	read := func(name string) (*climindex.Field, error) {
		v, err := ncio.ReadVariable(inputFile, name)
		if err != nil {
			return nil, err
		}
		if err := ncio.CheckUnits(v.Units, wattPerMeter2); err != nil {
			return nil, fmt.Errorf("climindex: variable %s: %v", name, err)
		}
		return v.Field, nil
	}
	s, err := read(surface)
	if err != nil {
		return err
	}
	t := make([]*climindex.Field, len(terms))
	for i, name := range terms {
		if t[i], err = read(name); err != nil {
			return err
		}
	}
	q, err := climindex.NetHeatFlux(s, t...)
	if err != nil {
		return err
	}
	return create(outputFile, func(w *os.File) error {
		return ncio.Write(w, map[string]ncio.Variable{"qnet": {
			Field:       q,
			Description: "net heat flux",
			Units:       "W m-2",
		}})
	})
}

// Level writes the level of variable nearest to depth to outputFile,
// converted to °C if celsius is true and the variable is in Kelvin.
func Level(inputFile, variable string, depth float64, celsius bool, outputFile string) error {
	v, err := ncio.ReadVariable(inputFile, variable)
	if err != nil {
		return err
	}
	l, err := climindex.SelectLevel(v.Field, climindex.DepthDim, depth)
	if err != nil {
		return err
	}
	units := v.Units
	if celsius && !ncio.IsCelsius(units) {
		if err := ncio.CheckUnits(units, unit.Kelvin); err != nil {
			return fmt.Errorf("climindex: variable %s: %v", variable, err)
		}
		l = climindex.KelvinToCelsius(l)
		units = "degC"
	}
	return create(outputFile, func(w *os.File) error {
		return ncio.Write(w, map[string]ncio.Variable{variable: {
			Field:       l,
			Description: fmt.Sprintf("%s at %g m", variable, depth),
			Units:       units,
		}})
	})
}

// Extract copies variable to outputFile, renamed to name if name is
// not empty.
func Extract(inputFile, variable, name, outputFile string) error {
	v, err := ncio.ReadVariable(inputFile, variable)
	if err != nil {
		return err
	}
	if name == "" {
		name = variable
	}
	return create(outputFile, func(w *os.File) error {
		return ncio.Write(w, map[string]ncio.Variable{name: *v})
	})
}
