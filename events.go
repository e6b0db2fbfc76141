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

// Quantiles bounding the event classes.
const (
	LowerQuantile = 0.2
	UpperQuantile = 0.8
)

// EventSet holds the seasonal index values of the years classified as
// one kind of event, keyed by the start of the season they occurred in.
type EventSet struct {
	Series

	// Season is the season the classification was made in.
	Season Season

	// Lower and Upper are the LowerQuantile and UpperQuantile values of
	// the seasonal index over the whole record. Negative events are at
	// or below Lower; positive events are above Upper.
	Lower, Upper float64
}

// Years returns the calendar years of the samples in e, in
// chronological order and without duplicates. A nil set has no years.
func (e *EventSet) Years() []int {
	if e == nil {
		return nil
	}
	var years []int
	for _, t := range e.Time {
		y := t.Year()
		if len(years) == 0 || years[len(years)-1] != y {
			years = append(years, y)
		}
	}
	return years
}

// ClassifyEvents resamples index to December-anchored quarterly means,
// keeps the samples of the given season, and splits them at the 20th
// and 80th percentiles of that seasonal series. Values at or below the
// 20th percentile are negative events; values above the 80th
// percentile are positive events; everything in between is dropped.
// The thresholds are computed from index alone on every call.
func ClassifyEvents(index *Series, season Season) (negative, positive *EventSet, err error) {
	q, err := index.QuarterlyMean()
	if err != nil {
		return nil, nil, err
	}
	s := q.SelectSeason(season)
	lower := Quantile(s.Values, LowerQuantile)
	upper := Quantile(s.Values, UpperQuantile)

	newSet := func() *EventSet {
		return &EventSet{
			Series: Series{
				Name:     index.Name,
				Calendar: index.Calendar,
				Time:     []time.Time{},
				Values:   []float64{},
			},
			Season: season,
			Lower:  lower,
			Upper:  upper,
		}
	}
	negative, positive = newSet(), newSet()
	for i, v := range s.Values {
		switch {
		case math.IsNaN(v):
		case v <= lower:
			negative.Time = append(negative.Time, s.Time[i])
			negative.Values = append(negative.Values, v)
		case v > upper:
			positive.Time = append(positive.Time, s.Time[i])
			positive.Values = append(positive.Values, v)
		}
	}
	return negative, positive, nil
}

// IODEvents classifies Indian Ocean Dipole events from the SON-season
// dipole mode index of sst. It returns the negative and positive
// events.
func IODEvents(sst *Field) (negative, positive *EventSet, err error) {
	dmi, err := DMI(sst)
	if err != nil {
		return nil, nil, err
	}
	return ClassifyEvents(dmi, SON)
}

// ENSOEvents classifies La Niña and El Niño events from the DJF-season
// Niño 3.4 index of sst. It returns the La Niña (negative) and El Niño
// (positive) events.
func ENSOEvents(sst *Field) (laNina, elNino *EventSet, err error) {
	nino, err := NINO34(sst)
	if err != nil {
		return nil, nil, err
	}
	return ClassifyEvents(nino, DJF)
}

// EventsFunc classifies the events of one climate mode from a sea
// surface temperature field, returning the negative and positive events.
type EventsFunc func(sst *Field) (negative, positive *EventSet, err error)

// Events holds the event classifiers by climate mode.
var Events = map[string]EventsFunc{
	"IOD":  IODEvents,
	"ENSO": ENSOEvents,
}

// LookupEvents returns the event classifier for the named climate mode.
func LookupEvents(mode string) (EventsFunc, error) {
	if f, ok := Events[strings.ToUpper(mode)]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("climindex: unknown climate mode %q; valid options are IOD and ENSO", mode)
}

// Copy returns a deep copy of e.
func (e *EventSet) Copy() *EventSet {
	o := *e
	o.Series = *e.Series.Copy()
	return &o
}
