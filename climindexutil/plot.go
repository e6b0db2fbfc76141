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
	"fmt"
	"math"
	"time"

	"github.com/spatialmodel/climindex"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// decimalYear returns t as a fractional year.
func decimalYear(t time.Time) float64 {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return float64(t.Year()) + t.Sub(start).Hours()/end.Sub(start).Hours()
}

// seriesXYs returns the non-missing values of s as plot points.
func seriesXYs(s *climindex.Series) plotter.XYs {
	xy := make(plotter.XYs, 0, s.Len())
	for i, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		xy = append(xy, struct{ X, Y float64 }{X: decimalYear(s.Time[i]), Y: v})
	}
	return xy
}

// PlotSeries plots one or more series against time and saves the plot
// to the given file. The image format is chosen by the file extension.
func PlotSeries(file string, series ...*climindex.Series) error {
	p, err := plot.New()
	if err != nil {
		return err
	}
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Index"
	if len(series) == 1 {
		p.Title.Text = series[0].Name
	}
	p.Legend.Top = true
	lines := make([]interface{}, 0, 2*len(series))
	for _, s := range series {
		lines = append(lines, s.Name, seriesXYs(s))
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return fmt.Errorf("climindex: plotting: %v", err)
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, file)
}
