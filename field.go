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
	"fmt"
	"time"

	"github.com/ctessum/sparse"
)

// Axis identifies one of the four grid axes.
type Axis int

// The axes a field variable can be defined over. The order of these
// constants is the canonical axis order used after Relayout.
const (
	AxisTime Axis = iota
	AxisLev
	AxisLat
	AxisLon
)

func (a Axis) String() string {
	switch a {
	case AxisTime:
		return "time"
	case AxisLev:
		return "lev"
	case AxisLat:
		return "lat"
	case AxisLon:
		return "lon"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Logical variable names used by the metrics.
const (
	VarIPV       = "ipv"        // isentropic potential vorticity [m2 s-1 K kg-1]
	VarUwnd      = "uwnd"       // zonal wind [m/s]
	VarVwnd      = "vwnd"       // meridional wind [m/s]
	VarTropTheta = "trop_theta" // tropopause potential temperature [K]
)

// Variable is one gridded variable of a Field, defined over an ordered
// subset of the field's axes.
type Variable struct {
	Name string
	Axes []Axis
	Data *sparse.DenseArray
}

// Field is an in-memory multi-dimensional atmospheric dataset. It is owned
// by the caller; metrics hold a read-reference and never mutate it apart
// from the explicit Relayout operation.
type Field struct {
	Vars map[string]*Variable

	Time []time.Time
	Lev  []float64
	Lat  []float64
	Lon  []float64

	// LevUnits is the units annotation of the level axis. Pressure-unit
	// spellings ("mb", "millibars", "hPa") cause metrics configured in
	// Pa to rescale their level thresholds.
	LevUnits string
}

// NewField creates a field with the given axis coordinates and no
// variables.
func NewField(t []time.Time, lev, lat, lon []float64, levUnits string) *Field {
	return &Field{
		Vars:     make(map[string]*Variable),
		Time:     t,
		Lev:      lev,
		Lat:      lat,
		Lon:      lon,
		LevUnits: levUnits,
	}
}

// axisLen returns the length of the given axis.
func (f *Field) axisLen(a Axis) int {
	switch a {
	case AxisTime:
		return len(f.Time)
	case AxisLev:
		return len(f.Lev)
	case AxisLat:
		return len(f.Lat)
	default:
		return len(f.Lon)
	}
}

// AddVariable adds a variable defined over the given axes, checking that
// its shape matches the axis coordinates.
func (f *Field) AddVariable(name string, axes []Axis, data *sparse.DenseArray) error {
	if len(axes) != len(data.Shape) {
		return fmt.Errorf("stj: variable %s: %d axes given for %d array dimensions",
			name, len(axes), len(data.Shape))
	}
	for i, a := range axes {
		if data.Shape[i] != f.axisLen(a) {
			return fmt.Errorf("stj: variable %s: dimension %d has length %d but axis %s has %d points",
				name, i, data.Shape[i], a, f.axisLen(a))
		}
	}
	f.Vars[name] = &Variable{Name: name, Axes: axes, Data: data}
	return nil
}

// LatDescending reports whether the latitude coordinate decreases with
// increasing index.
func (f *Field) LatDescending() bool {
	return len(f.Lat) > 1 && f.Lat[0] > f.Lat[len(f.Lat)-1]
}

// LevDescending reports whether the level coordinate decreases with
// increasing index.
func (f *Field) LevDescending() bool {
	return len(f.Lev) > 1 && f.Lev[0] > f.Lev[len(f.Lev)-1]
}

// LevLowFirst reports whether index 0 of the level axis is the physically
// lowest level. For a pressure coordinate the lowest level has the largest
// value; for isentropic or height coordinates it has the smallest.
func (f *Field) LevLowFirst() bool {
	if pressureUnits[f.LevUnits] || f.LevUnits == "Pa" {
		return f.LevDescending() || len(f.Lev) < 2
	}
	return !f.LevDescending()
}

// Relayout transposes every variable into canonical (time, lev, lat, lon)
// axis order. Metrics call it before operating along the vertical axis so
// that level columns are addressable with fixed strides. It is idempotent:
// variables already in canonical order are left untouched.
func (f *Field) Relayout() {
	for _, v := range f.Vars {
		if axesCanonical(v.Axes) {
			continue
		}
		perm := canonicalPerm(v.Axes)
		v.Data = transpose(v.Data, perm)
		axes := make([]Axis, len(v.Axes))
		for to, from := range perm {
			axes[to] = v.Axes[from]
		}
		v.Axes = axes
	}
}

func axesCanonical(axes []Axis) bool {
	for i := 1; i < len(axes); i++ {
		if axes[i] <= axes[i-1] {
			return false
		}
	}
	return true
}

// canonicalPerm returns perm such that perm[to] is the current position of
// the axis that belongs at position to in canonical order.
func canonicalPerm(axes []Axis) []int {
	perm := make([]int, 0, len(axes))
	for want := AxisTime; want <= AxisLon; want++ {
		for i, a := range axes {
			if a == want {
				perm = append(perm, i)
			}
		}
	}
	return perm
}

// transpose permutes the dimensions of a so that output dimension d is
// input dimension perm[d].
func transpose(a *sparse.DenseArray, perm []int) *sparse.DenseArray {
	shape := make([]int, len(perm))
	for d, p := range perm {
		shape[d] = a.Shape[p]
	}
	out := sparse.ZerosDense(shape...)
	idx := make([]int, len(perm))
	for i, val := range a.Elements {
		old := a.IndexNd(i)
		for d, p := range perm {
			idx[d] = old[p]
		}
		out.Elements[out.Index1d(idx...)] = val
	}
	return out
}

// levColumn gathers the level column of a canonical 4-d (time, lev, lat,
// lon) array at the given time/latitude/longitude cell into dst, which must
// have length Shape[1]. It returns dst.
func levColumn(a *sparse.DenseArray, t, j, i int, dst []float64) []float64 {
	stride := a.Shape[2] * a.Shape[3]
	base := a.Index1d(t, 0, j, i)
	for k := range dst {
		dst[k] = a.Elements[base+k*stride]
	}
	return dst
}

// latColumn gathers the latitude column of a canonical 3-d (time, lat, lon)
// array at the given time/longitude cell into dst, which must have length
// Shape[1]. It returns dst.
func latColumn(a *sparse.DenseArray, t, i int, dst []float64) []float64 {
	stride := a.Shape[2]
	base := a.Index1d(t, 0, i)
	for j := range dst {
		dst[j] = a.Elements[base+j*stride]
	}
	return dst
}
