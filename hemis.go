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

import "fmt"

// hemisWindow describes how one hemisphere is selected: the extremum mode
// used on derivative curves, the tag keying output entries, the full
// hemisphere bounds, and the configured search band, all expressed in the
// coordinate direction of the latitude axis.
type hemisWindow struct {
	mode ExtremumMode
	tag  string
	// hemiLo, hemiHi select the whole hemisphere.
	hemiLo, hemiHi float64
	// bandLo, bandHi select the configured min/max latitude band.
	bandLo, bandHi float64
}

// hemisphere returns the selection window for the southern (shemis true) or
// northern hemisphere, signing the configured bound magnitudes for the
// hemisphere and swapping interval ends when the latitude coordinate
// decreases with index.
func hemisphere(shemis bool, minLat, maxLat float64, latDescending bool) hemisWindow {
	w := hemisWindow{bandLo: minLat, bandHi: maxLat}
	if shemis {
		w.mode = Maxima
		w.tag = "sh"
		w.hemiLo, w.hemiHi = -90, 0
		if w.bandLo >= 0 && w.bandHi >= 0 {
			w.bandLo, w.bandHi = -w.bandLo, -w.bandHi
		}
	} else {
		w.mode = Minima
		w.tag = "nh"
		w.hemiLo, w.hemiHi = 0, 90
		if w.bandLo <= 0 && w.bandHi <= 0 {
			w.bandLo, w.bandHi = -w.bandLo, -w.bandHi
		}
	}
	if latDescending {
		w.hemiLo, w.hemiHi = w.hemiHi, w.hemiLo
	}
	return w
}

// selectLatRange returns the inclusive index range of lat values selected
// by the interval (lo, hi), interpreted in the axis's own direction like a
// coordinate slice: on an ascending axis values in [lo, hi], on a
// descending axis values in [hi, lo]. If the selection is empty the
// interval is reversed and the selection retried once; an empty selection
// after reversal is a configuration error.
func selectLatRange(lat []float64, lo, hi float64) (j0, j1 int, err error) {
	if j0, j1, ok := trySelect(lat, lo, hi); ok {
		return j0, j1, nil
	}
	if j0, j1, ok := trySelect(lat, hi, lo); ok {
		return j0, j1, nil
	}
	return 0, 0, fmt.Errorf("stj: latitude selection (%g, %g) matches no grid points in either direction", lo, hi)
}

func trySelect(lat []float64, lo, hi float64) (j0, j1 int, ok bool) {
	descending := len(lat) > 1 && lat[0] > lat[len(lat)-1]
	j0, j1 = -1, -1
	for j, v := range lat {
		var in bool
		if descending {
			in = v <= lo && v >= hi
		} else {
			in = v >= lo && v <= hi
		}
		if in {
			if j0 < 0 {
				j0 = j
			}
			j1 = j
		}
	}
	return j0, j1, j0 >= 0
}
