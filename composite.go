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

// Branch identifies the composite a year's samples are assigned to.
type Branch int

// Composite branches.
const (
	NoEvent Branch = iota
	PositiveEvent
	NegativeEvent
)

func (b Branch) String() string {
	switch b {
	case PositiveEvent:
		return "positive"
	case NegativeEvent:
		return "negative"
	default:
		return "none"
	}
}

// YearBranches assigns every year in years to a branch. Membership in
// positive is tested before membership in negative, so a year present
// in both is assigned to PositiveEvent.
func YearBranches(years, positive, negative []int) map[int]Branch {
	pos := make(map[int]bool, len(positive))
	for _, y := range positive {
		pos[y] = true
	}
	neg := make(map[int]bool, len(negative))
	for _, y := range negative {
		neg[y] = true
	}
	b := make(map[int]Branch, len(years))
	for _, y := range years {
		switch {
		case pos[y]:
			b[y] = PositiveEvent
		case neg[y]:
			b[y] = NegativeEvent
		default:
			b[y] = NoEvent
		}
	}
	return b
}

// Partition splits year groups into the positive and negative branches
// according to branches, keeping their order. Groups assigned NoEvent
// are dropped.
func Partition(groups []YearGroup, branches map[int]Branch) (positive, negative []*Field) {
	for _, g := range groups {
		switch branches[g.Year] {
		case PositiveEvent:
			positive = append(positive, g.Field)
		case NegativeEvent:
			negative = append(negative, g.Field)
		}
	}
	return positive, negative
}

// Composite returns the quarterly means of companion for every year
// containing a positive event and for every year containing a negative
// event, concatenated along time in chronological order. An empty or
// nil event set gives a composite with zero time steps.
func Composite(companion *Field, negative, positive *EventSet) (pos, neg *Field, err error) {
	q, err := QuarterlyMean(companion)
	if err != nil {
		return nil, nil, err
	}
	groups := GroupByYear(q)
	years := make([]int, len(groups))
	for i, g := range groups {
		years[i] = g.Year
	}
	posGroups, negGroups := Partition(groups, YearBranches(years, positive.Years(), negative.Years()))
	if pos, err = ConcatTime(q, posGroups...); err != nil {
		return nil, nil, err
	}
	if neg, err = ConcatTime(q, negGroups...); err != nil {
		return nil, nil, err
	}
	return pos, neg, nil
}

// IODComposites composites companion by the Indian Ocean Dipole events
// found in sst, returning the positive and negative IOD composites. If
// companion is nil, sst itself is composited.
func IODComposites(sst, companion *Field) (pos, neg *Field, err error) {
	if companion == nil {
		companion = sst
	}
	nIOD, pIOD, err := IODEvents(sst)
	if err != nil {
		return nil, nil, err
	}
	return Composite(companion, nIOD, pIOD)
}

// ENSOComposites composites companion by the El Niño and La Niña events
// found in sst, returning the El Niño and La Niña composites. If
// companion is nil, sst itself is composited.
func ENSOComposites(sst, companion *Field) (elNino, laNina *Field, err error) {
	if companion == nil {
		companion = sst
	}
	ln, en, err := ENSOEvents(sst)
	if err != nil {
		return nil, nil, err
	}
	return Composite(companion, ln, en)
}
