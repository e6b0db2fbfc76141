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
	"strings"

	"github.com/spatialmodel/climindex"
	"github.com/tealeg/xlsx"
)

// WriteEventReport writes a spreadsheet to file listing the given
// events of a climate mode and the thresholds used to classify them.
func WriteEventReport(file, mode string, negative, positive *climindex.EventSet) error {
	f := xlsx.NewFile()
	events, err := f.AddSheet("Events")
	if err != nil {
		return err
	}
	addRow(events, "Mode", "Event", "Year", "Season start", "Index value")
	for _, e := range []struct {
		b   climindex.Branch
		set *climindex.EventSet
	}{{climindex.PositiveEvent, positive}, {climindex.NegativeEvent, negative}} {
		for i, t := range e.set.Time {
			row := events.AddRow()
			row.AddCell().SetString(strings.ToUpper(mode))
			row.AddCell().SetString(e.b.String())
			row.AddCell().SetInt(t.Year())
			row.AddCell().SetString(t.Format("2006-01-02"))
			row.AddCell().SetFloat(e.set.Values[i])
		}
	}

	thresholds, err := f.AddSheet("Thresholds")
	if err != nil {
		return err
	}
	addRow(thresholds, "Index", "Season", "Lower", "Upper")
	row := thresholds.AddRow()
	row.AddCell().SetString(positive.Name)
	row.AddCell().SetString(positive.Season.String())
	row.AddCell().SetFloat(positive.Lower)
	row.AddCell().SetFloat(positive.Upper)

	if err := f.Save(file); err != nil {
		return fmt.Errorf("climindex: writing event report: %v", err)
	}
	return nil
}

func addRow(s *xlsx.Sheet, cells ...string) {
	row := s.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}
