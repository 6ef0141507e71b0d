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
	"os"
	"strings"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// LoadField reads the variables named in cfg from the NetCDF file at path
// and assembles them into a Field. The zonal wind is required; the other
// variables are read when their configured names are present in the file.
// The time axis is decoded from its CF-style "X since YYYY-MM-DD" units
// attribute, and the level axis units annotation is recorded so that
// metrics configured in Pa can rescale their thresholds.
func LoadField(cfg Config, path string) (*Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stj: opening input file: %v", err)
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("stj: reading input file %s: %v", path, err)
	}
	return readField(cfg, ff, path)
}

func readField(cfg Config, ff *cdf.File, path string) (*Field, error) {
	times, err := readTimeAxis(ff, cfg.TimeName)
	if err != nil {
		return nil, err
	}
	lev, err := readCoordVar(ff, cfg.LevName)
	if err != nil {
		return nil, err
	}
	lat, err := readCoordVar(ff, cfg.LatName)
	if err != nil {
		return nil, err
	}
	lon, err := readCoordVar(ff, cfg.LonName)
	if err != nil {
		return nil, err
	}
	field := NewField(times, lev, lat, lon, attrString(ff, cfg.LevName, "units"))

	axisNames := map[string]Axis{
		cfg.TimeName: AxisTime,
		cfg.LevName:  AxisLev,
		cfg.LatName:  AxisLat,
		cfg.LonName:  AxisLon,
	}
	for logical, fileName := range map[string]string{
		VarIPV:       cfg.IPVName,
		VarUwnd:      cfg.UwndName,
		VarVwnd:      cfg.VwndName,
		VarTropTheta: cfg.TropThetaName,
	} {
		if fileName == "" || !hasVariable(ff, fileName) {
			if logical == VarUwnd {
				return nil, fmt.Errorf("stj: input file %s has no zonal wind variable %s", path, fileName)
			}
			continue
		}
		axes, data, err := readGridVar(ff, fileName, axisNames)
		if err != nil {
			return nil, err
		}
		if err := field.AddVariable(logical, axes, data); err != nil {
			return nil, err
		}
	}
	return field, nil
}

func hasVariable(ff *cdf.File, name string) bool {
	for _, v := range ff.Header.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

// readGridVar reads one gridded variable, resolving its dimension names to
// field axes.
func readGridVar(ff *cdf.File, name string, axisNames map[string]Axis) ([]Axis, *sparse.DenseArray, error) {
	dims := ff.Header.Dimensions(name)
	axes := make([]Axis, len(dims))
	for i, d := range dims {
		a, ok := axisNames[d]
		if !ok {
			return nil, nil, fmt.Errorf("stj: variable %s has unrecognized dimension %s", name, d)
		}
		axes[i] = a
	}
	vals, err := readFloats(ff, name)
	if err != nil {
		return nil, nil, err
	}
	data := sparse.ZerosDense(ff.Header.Lengths(name)...)
	if len(vals) != len(data.Elements) {
		return nil, nil, fmt.Errorf("stj: variable %s: read %d values for %d grid cells",
			name, len(vals), len(data.Elements))
	}
	copy(data.Elements, vals)
	return axes, data, nil
}

// readCoordVar reads a one-dimensional coordinate variable.
func readCoordVar(ff *cdf.File, name string) ([]float64, error) {
	if !hasVariable(ff, name) {
		return nil, fmt.Errorf("stj: input file has no coordinate variable %s", name)
	}
	if dims := ff.Header.Lengths(name); len(dims) != 1 {
		return nil, fmt.Errorf("stj: coordinate variable %s is %d-dimensional", name, len(dims))
	}
	return readFloats(ff, name)
}

// readFloats reads the full contents of a numeric variable as float64.
func readFloats(ff *cdf.File, name string) ([]float64, error) {
	r := ff.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("stj: reading netcdf variable %s: %v", name, err)
	}
	switch v := buf.(type) {
	case []float64:
		return v, nil
	case []float32:
		out := make([]float64, len(v))
		for i, val := range v {
			out[i] = float64(val)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(v))
		for i, val := range v {
			out[i] = float64(val)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(v))
		for i, val := range v {
			out[i] = float64(val)
		}
		return out, nil
	}
	return nil, fmt.Errorf("stj: netcdf variable %s has unsupported type %T", name, buf)
}

// attrString returns a text attribute, or "" when absent.
func attrString(ff *cdf.File, v, attr string) string {
	if a := ff.Header.GetAttribute(v, attr); a != nil {
		if s, ok := a.(string); ok {
			return s
		}
	}
	return ""
}

// readTimeAxis decodes the time coordinate from its CF units attribute,
// e.g. "days since 1979-01-01" or "hours since 1979-01-01 00:00:00".
func readTimeAxis(ff *cdf.File, name string) ([]time.Time, error) {
	vals, err := readCoordVar(ff, name)
	if err != nil {
		return nil, err
	}
	units := attrString(ff, name, "units")
	step, base, err := parseTimeUnits(units)
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, len(vals))
	for i, v := range vals {
		times[i] = base.Add(time.Duration(v * float64(step)))
	}
	return times, nil
}

// parseTimeUnits splits a CF time units string into the duration of one
// time unit and the epoch it counts from.
func parseTimeUnits(units string) (time.Duration, time.Time, error) {
	fields := strings.SplitN(units, " since ", 2)
	if len(fields) != 2 {
		return 0, time.Time{}, fmt.Errorf("stj: time axis units %q are not of the form \"X since YYYY-MM-DD\"", units)
	}
	var step time.Duration
	switch strings.TrimSpace(fields[0]) {
	case "days", "day":
		step = 24 * time.Hour
	case "hours", "hour":
		step = time.Hour
	case "minutes", "minute":
		step = time.Minute
	case "seconds", "second":
		step = time.Second
	default:
		return 0, time.Time{}, fmt.Errorf("stj: unsupported time axis unit %q", fields[0])
	}
	epoch := strings.TrimSpace(fields[1])
	for _, layout := range []string{"2006-1-2 15:4:5", "2006-1-2 15:4", "2006-1-2"} {
		if base, err := time.Parse(layout, epoch); err == nil {
			return step, base.UTC(), nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("stj: cannot parse time axis epoch %q", epoch)
}
