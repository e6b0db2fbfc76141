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

package ncio

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// CF calendar names.
const (
	Standard           = "standard"
	Gregorian          = "gregorian"
	ProlepticGregorian = "proleptic_gregorian"
	NoLeap             = "noleap"
	Days365            = "365_day"
)

// Epoch is the reference time of written time coordinates.
var Epoch = time.Date(1800, time.January, 1, 0, 0, 0, 0, time.UTC)

var unitDurations = map[string]time.Duration{
	"days":         24 * time.Hour,
	"day":          24 * time.Hour,
	"d":            24 * time.Hour,
	"hours":        time.Hour,
	"hour":         time.Hour,
	"h":            time.Hour,
	"minutes":      time.Minute,
	"minute":       time.Minute,
	"seconds":      time.Second,
	"second":       time.Second,
	"s":            time.Second,
	"milliseconds": time.Millisecond,
}

// parseUnits splits a CF time units attribute such as
// "days since 1800-01-01 00:00:00" into the step and reference time.
func parseUnits(units string) (time.Duration, time.Time, error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("invalid time units %q", units)
	}
	step, ok := unitDurations[strings.ToLower(strings.TrimSpace(parts[0]))]
	if !ok {
		return 0, time.Time{}, fmt.Errorf("unsupported time unit %q", parts[0])
	}
	ref, err := parseRef(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("invalid reference time in %q: %v", units, err)
	}
	return step, ref, nil
}

func parseRef(s string) (time.Time, error) {
	if t, err := cast.ToTimeE(s); err == nil {
		return t.UTC(), nil
	}
	// Reference dates in model output are often not zero padded,
	// e.g. "1-1-1 0:0:0".
	s = strings.TrimSuffix(strings.TrimSuffix(s, " UTC"), "Z")
	if i := strings.Index(s, "-"); i > 0 && i < 4 {
		s = strings.Repeat("0", 4-i) + s
	}
	for _, layout := range []string{"2006-1-2 15:4:5", "2006-1-2 15:4:5.999999999", "2006-1-2T15:4:5", "2006-1-2 15:4", "2006-1-2"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// DecodeTime converts numeric CF time values to times. Calendars
// without leap days are decoded so that every calendar date in the
// file maps to the same date in the result.
func DecodeTime(values []float64, units, calendar string) ([]time.Time, error) {
	step, ref, err := parseUnits(units)
	if err != nil {
		return nil, err
	}
	o := make([]time.Time, len(values))
	switch strings.ToLower(calendar) {
	case "", Standard, Gregorian, ProlepticGregorian:
		for i, v := range values {
			sec, nsec := split(v * step.Seconds())
			o[i] = time.Unix(ref.Unix()+sec, int64(ref.Nanosecond())+nsec).UTC()
		}
	case NoLeap, Days365:
		for i, v := range values {
			sec, nsec := split(v * step.Seconds())
			o[i] = addNoLeap(ref, sec).Add(time.Duration(nsec))
		}
	default:
		return nil, fmt.Errorf("unsupported calendar %q", calendar)
	}
	return o, nil
}

// split splits seconds into whole seconds and nanoseconds, rounded to
// the millisecond.
func split(seconds float64) (int64, int64) {
	ms := math.Round(seconds * 1000)
	sec := math.Floor(ms / 1000)
	return int64(sec), int64(ms-sec*1000) * int64(time.Millisecond)
}

var cumulativeDays = [12]int64{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// addNoLeap adds sec seconds to ref in a calendar where every year
// has 365 days.
func addNoLeap(ref time.Time, sec int64) time.Time {
	const day = 86400
	refDay := int64(ref.Year())*365 + cumulativeDays[ref.Month()-1] + int64(ref.Day()) - 1
	clock := int64(ref.Hour()*3600+ref.Minute()*60+ref.Second())
	total := clock + sec
	days := total / day
	rem := total % day
	if rem < 0 {
		days--
		rem += day
	}
	n := refDay + days
	year := n / 365
	doy := n % 365
	if doy < 0 {
		year--
		doy += 365
	}
	month := 11
	for cumulativeDays[month] > doy {
		month--
	}
	t := time.Date(int(year), time.Month(month+1), int(doy-cumulativeDays[month]+1), 0, 0, 0, ref.Nanosecond(), time.UTC)
	return t.Add(time.Duration(rem) * time.Second)
}

// EncodeTime converts times to days since Epoch in the standard
// calendar.
func EncodeTime(t []time.Time) []float64 {
	o := make([]float64, len(t))
	for i, tt := range t {
		sec := tt.Unix() - Epoch.Unix()
		o[i] = (float64(sec) + float64(tt.Nanosecond())/1e9) / 86400
	}
	return o
}
