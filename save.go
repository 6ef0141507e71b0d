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
	"sort"
	"strings"
	"time"

	"github.com/ctessum/cdf"
)

// jetQuantity describes the metadata written for one output quantity
// prefix.
type jetQuantity struct {
	standardName string
	descr        string
	units        string
}

var jetQuantities = map[string]jetQuantity{
	"lat":    {"jet_latitude", "subtropical jet latitude", "degrees_north"},
	"intens": {"jet_intensity", "subtropical jet intensity", "m s-1"},
	"theta":  {"jet_theta", "subtropical jet potential temperature", "K"},
}

// SaveJet writes a metric's output to a NetCDF file at path. One variable
// is written per output key, annotated with standard_name, description and
// units attributes; commitID is recorded as a global provenance attribute.
func SaveJet(out *Output, path, commitID string) error {
	if len(out.Data) == 0 {
		return fmt.Errorf("stj: saving output to %s: output is empty", path)
	}
	nt := len(out.Time)

	dims, lengths := []string{"time"}, []int{nt}
	varDims := []string{"time"}
	if out.Lon != nil {
		dims, lengths = append(dims, "lon"), append(lengths, len(out.Lon))
		varDims = append(varDims, "lon")
	}
	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "commit-id", commitID)

	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "days since 1970-01-01")
	if out.Lon != nil {
		h.AddVariable("lon", []string{"lon"}, []float64{0})
		h.AddAttribute("lon", "units", "degrees_east")
	}

	keys := make([]string, 0, len(out.Data))
	for key := range out.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		q, ok := jetQuantities[strings.SplitN(key, "_", 2)[0]]
		if !ok {
			return fmt.Errorf("stj: saving output to %s: unrecognized quantity %s", path, key)
		}
		h.AddVariable(key, varDims, []float64{0})
		h.AddAttribute(key, "standard_name", q.standardName)
		h.AddAttribute(key, "description", q.descr)
		h.AddAttribute(key, "units", q.units)
	}
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("stj: creating output file %s: %v", path, err)
	}

	ff, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stj: creating output file: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		return fmt.Errorf("stj: creating output file %s: %v", path, err)
	}

	epoch := time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	tvals := make([]float64, nt)
	for i, tm := range out.Time {
		tvals[i] = tm.Sub(epoch).Hours() / 24
	}
	if err := writeVar(f, "time", tvals, []int{nt}); err != nil {
		return fmt.Errorf("stj: writing output file %s: %v", path, err)
	}
	shape := []int{nt}
	if out.Lon != nil {
		if err := writeVar(f, "lon", out.Lon, []int{len(out.Lon)}); err != nil {
			return fmt.Errorf("stj: writing output file %s: %v", path, err)
		}
		shape = append(shape, len(out.Lon))
	}
	for _, key := range keys {
		if err := writeVar(f, key, out.Data[key].Elements, shape); err != nil {
			return fmt.Errorf("stj: writing output file %s: %v", path, err)
		}
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		return fmt.Errorf("stj: finalizing output file %s: %v", path, err)
	}
	return nil
}

func writeVar(f *cdf.File, name string, vals []float64, shape []int) error {
	end := make([]int, len(shape))
	copy(end, shape)
	w := f.Writer(name, make([]int, len(shape)), end)
	_, err := w.Write(vals)
	return err
}
