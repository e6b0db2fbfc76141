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

// Package climindex computes climate mode indices and event composites
// from gridded ocean fields.
//
// Sea surface temperature anomalies are averaged over fixed boxes to
// give the Niño 3.4, Indian Ocean Basin Mode and Dipole Mode indices.
// Seasonal values of an index are split at their 20th and 80th
// percentiles into negative and positive events, and the years of those
// events are used to composite a companion field such as the depth of
// the 20°C isotherm or the net surface heat flux.
//
// Fields are expected to have a time dimension with a calendar, and
// lat and lon dimensions for the regional indices. Longitudes should be
// passed through NormalizeLongitude before regional selection.
package climindex

// Version gives the version number.
const Version = "1.0.0"
