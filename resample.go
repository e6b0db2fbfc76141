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

package climindex

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Season is a three-month meteorological season.
type Season int

// Seasons, in the order they start in a December-anchored year.
const (
	DJF Season = iota
	MAM
	JJA
	SON
)

var seasonNames = [...]string{"DJF", "MAM", "JJA", "SON"}

func (s Season) String() string {
	if s < DJF || s > SON {
		return fmt.Sprintf("Season(%d)", int(s))
	}
	return seasonNames[s]
}

// ParseSeason parses one of "DJF", "MAM", "JJA" or "SON".
func ParseSeason(s string) (Season, error) {
	for i, n := range seasonNames {
		if strings.EqualFold(s, n) {
			return Season(i), nil
		}
	}
	return 0, fmt.Errorf("climindex: invalid season %q; valid seasons are %v", s, seasonNames)
}

// SeasonOf returns the season that t falls in.
func SeasonOf(t time.Time) Season {
	return Season((int(t.Month()) % 12) / 3)
}

// quarterStart returns the first instant of the December-anchored
// quarter containing t: 1 December, 1 March, 1 June or 1 September.
func quarterStart(t time.Time) time.Time {
	y, m := t.Year(), t.Month()
	start := time.Month(int(SeasonOf(t))*3) // DJF starts in "month 0", i.e. December.
	if start == 0 {
		start = time.December
		if m != time.December {
			y--
		}
	}
	return time.Date(y, start, 1, 0, 0, 0, 0, t.Location())
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// QuarterlyMean resamples f to three-month means over quarters starting
// on 1 December, 1 March, 1 June and 1 September, so that the quarters
// are the seasons DJF, MAM, JJA and SON. Each output time is the start
// of its quarter. Quarters between the first and last sample that hold
// no data are NaN. NaN values are skipped in the means.
func QuarterlyMean(f *Field) (*Field, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	if f.Len() == 0 {
		return f.withSteps([]time.Time{}), nil
	}
	q0 := quarterStart(f.Time[0])
	nq := monthsBetween(q0, quarterStart(f.Time[f.Len()-1]))/3 + 1
	t := make([]time.Time, nq)
	for i := range t {
		t[i] = q0.AddDate(0, 3*i, 0)
	}
	o := f.withSteps(t)
	n := f.cellSize()
	count := make([]int, len(o.Data.Elements))
	for i, tt := range f.Time {
		q := monthsBetween(q0, quarterStart(tt)) / 3
		sum := o.step(q)
		cnt := count[q*n : (q+1)*n]
		for j, v := range f.step(i) {
			if math.IsNaN(v) {
				continue
			}
			sum[j] += v
			cnt[j]++
		}
	}
	for i, c := range count {
		if c == 0 {
			o.Data.Elements[i] = math.NaN()
			continue
		}
		o.Data.Elements[i] /= float64(c)
	}
	return o, nil
}

// QuarterlyMean resamples s in the same way as QuarterlyMean does for
// fields. The month label is not carried over.
func (s *Series) QuarterlyMean() (*Series, error) {
	q, err := QuarterlyMean(s.Field())
	if err != nil {
		return nil, err
	}
	return SeriesFromField(s.Name, q)
}

// SelectSeason returns the time steps of f that fall in season s.
func SelectSeason(f *Field, s Season) *Field {
	var steps []int
	for i, t := range f.Time {
		if SeasonOf(t) == s {
			steps = append(steps, i)
		}
	}
	return f.Select(steps)
}

// SelectSeason returns the samples of s that fall in season season.
func (s *Series) SelectSeason(season Season) *Series {
	o := &Series{Name: s.Name, Calendar: s.Calendar}
	for i, t := range s.Time {
		if SeasonOf(t) != season {
			continue
		}
		o.Time = append(o.Time, t)
		o.Values = append(o.Values, s.Values[i])
		if s.Month != nil {
			o.Month = append(o.Month, s.Month[i])
		}
	}
	return o
}

// YearGroup holds the time steps of a field that fall in one calendar
// year.
type YearGroup struct {
	Year  int
	Field *Field
}

// GroupByYear splits f into calendar-year groups, in chronological
// order.
func GroupByYear(f *Field) []YearGroup {
	var groups []YearGroup
	var steps []int
	flush := func() {
		if len(steps) > 0 {
			groups = append(groups, YearGroup{Year: f.Time[steps[0]].Year(), Field: f.Select(steps)})
			steps = nil
		}
	}
	for i, t := range f.Time {
		if len(steps) > 0 && f.Time[steps[0]].Year() != t.Year() {
			flush()
		}
		steps = append(steps, i)
	}
	flush()
	return groups
}

// SeasonalMean returns one value per year for season s: f is resampled
// with QuarterlyMean, the requested season is selected, and the samples
// in each calendar year are averaged. Output times are 1 January of
// each year.
func SeasonalMean(f *Field, s Season) (*Field, error) {
	q, err := QuarterlyMean(f)
	if err != nil {
		return nil, err
	}
	groups := GroupByYear(SelectSeason(q, s))
	t := make([]time.Time, len(groups))
	for i, g := range groups {
		t[i] = time.Date(g.Year, time.January, 1, 0, 0, 0, 0, g.Field.Time[0].Location())
	}
	o := q.withSteps(t)
	for i, g := range groups {
		meanOverTime(o.step(i), g.Field)
	}
	return o, nil
}

// meanOverTime stores the NaN-skipping mean over time of every cell of
// f in dst.
func meanOverTime(dst []float64, f *Field) {
	count := make([]int, len(dst))
	for i := range dst {
		dst[i] = 0
	}
	for i := range f.Time {
		for j, v := range f.step(i) {
			if math.IsNaN(v) {
				continue
			}
			dst[j] += v
			count[j]++
		}
	}
	for j, c := range count {
		if c == 0 {
			dst[j] = math.NaN()
			continue
		}
		dst[j] /= float64(c)
	}
}
