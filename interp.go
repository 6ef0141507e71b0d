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

import (
	"math"

	"github.com/ctessum/sparse"
)

// vinterpColumn returns the value of vals where cross crosses target,
// interpolating linearly inside the first bracketing level interval
// (scanning from index 0). cross need not be monotonic; the first valid
// crossing makes the result deterministic. If no pair of adjacent finite
// cross values brackets the target, NaN is returned.
func vinterpColumn(vals, cross []float64, target float64) float64 {
	for k := 0; k+1 < len(cross); k++ {
		c0, c1 := cross[k], cross[k+1]
		if math.IsNaN(c0) || math.IsNaN(c1) {
			continue
		}
		if (c0-target)*(c1-target) > 0 {
			continue
		}
		if c0 == c1 {
			// Degenerate bracket: both ends sit on the target.
			return vals[k]
		}
		w := (target - c0) / (c1 - c0)
		return vals[k] + w*(vals[k+1]-vals[k])
	}
	return math.NaN()
}

// VInterp interpolates vals onto the surface where cross equals target.
// vals and cross are canonical 4-d (time, lev, lat, lon) arrays sharing the
// level axis; the result is 3-d (time, lat, lon). Cells with no crossing
// are NaN. The evaluation is batched across goroutines unless sequential is
// true; both paths apply vinterpColumn per cell and agree exactly.
func VInterp(vals, cross *sparse.DenseArray, target float64, sequential bool) *sparse.DenseArray {
	nt, nk, nj, ni := vals.Shape[0], vals.Shape[1], vals.Shape[2], vals.Shape[3]
	out := sparse.ZerosDense(nt, nj, ni)
	runCells(nt, sequential, func(t int) {
		vcol := make([]float64, nk)
		ccol := make([]float64, nk)
		for j := 0; j < nj; j++ {
			for i := 0; i < ni; i++ {
				levColumn(vals, t, j, i, vcol)
				levColumn(cross, t, j, i, ccol)
				out.Elements[out.Index1d(t, j, i)] = vinterpColumn(vcol, ccol, target)
			}
		}
	})
	return out
}

// VInterpCoord interpolates the level coordinate itself onto the surface
// where cross equals target, e.g. potential temperature on a potential
// vorticity surface when the data are on isentropic levels.
func VInterpCoord(lev []float64, cross *sparse.DenseArray, target float64, sequential bool) *sparse.DenseArray {
	nt, nj, ni := cross.Shape[0], cross.Shape[2], cross.Shape[3]
	out := sparse.ZerosDense(nt, nj, ni)
	runCells(nt, sequential, func(t int) {
		ccol := make([]float64, len(lev))
		for j := 0; j < nj; j++ {
			for i := 0; i < ni; i++ {
				levColumn(cross, t, j, i, ccol)
				out.Elements[out.Index1d(t, j, i)] = vinterpColumn(lev, ccol, target)
			}
		}
	})
	return out
}

// lowestValid returns the first finite element of col scanning from the
// physically lowest level. lowFirst indicates whether index 0 is the
// physically lowest level. If no element is finite, NaN is returned.
func lowestValid(col []float64, lowFirst bool) float64 {
	if lowFirst {
		for _, v := range col {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				return v
			}
		}
		return math.NaN()
	}
	for k := len(col) - 1; k >= 0; k-- {
		if !math.IsNaN(col[k]) && !math.IsInf(col[k], 0) {
			return col[k]
		}
	}
	return math.NaN()
}

// empty is used for semaphore channels.
type empty struct{}

// runCells evaluates fn for every index in [0, n), either sequentially or
// with one goroutine per index. The two modes must be interchangeable:
// fn may only write to state owned by its own index.
func runCells(n int, sequential bool, fn func(int)) {
	if sequential {
		for t := 0; t < n; t++ {
			fn(t)
		}
		return
	}
	sem := make(chan empty)
	for t := 0; t < n; t++ {
		go func(t int) {
			fn(t)
			sem <- empty{}
		}(t)
	}
	for t := 0; t < n; t++ { // wait for routines to finish
		<-sem
	}
}
