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

package stj

// ExtremumMode selects whether jet candidates are local maxima or local
// minima of the derivative curve. The convention is hemisphere-dependent:
// maxima in the southern hemisphere, minima in the northern.
type ExtremumMode int

// The extremum detection modes.
const (
	Maxima ExtremumMode = iota
	Minima
)

// argRelExtrema returns the indices of interior points that satisfy cmp
// against both neighbors. Endpoints are never candidates. NaN values never
// satisfy cmp and so are never candidates.
func argRelExtrema(x []float64, cmp func(a, b float64) bool) []int {
	var idx []int
	for i := 1; i+1 < len(x); i++ {
		if cmp(x[i], x[i-1]) && cmp(x[i], x[i+1]) {
			idx = append(idx, i)
		}
	}
	return idx
}

// argRelMax returns the indices of strict local maxima of x.
func argRelMax(x []float64) []int {
	return argRelExtrema(x, func(a, b float64) bool { return a > b })
}

// argRelMin returns the indices of strict local minima of x.
func argRelMin(x []float64) []int {
	return argRelExtrema(x, func(a, b float64) bool { return a < b })
}

// argRelMaxPlateau returns the indices of local maxima of x under a
// greater-or-equal neighbor relation, which flags plateau interior points
// as well as strict peaks. The Davis–Birner metric depends on this
// permissive behavior.
func argRelMaxPlateau(x []float64) []int {
	return argRelExtrema(x, func(a, b float64) bool { return a >= b })
}

// extrema returns the candidate extremum indices of x under the given mode.
func extrema(x []float64, mode ExtremumMode) []int {
	if mode == Maxima {
		return argRelMax(x)
	}
	return argRelMin(x)
}
