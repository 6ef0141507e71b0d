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
	"math"
	"sort"
	"time"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// Metric is one subtropical jet detection algorithm. Metrics are stateless
// across FindJet calls beyond their construction-time configuration:
// calling FindJet for each hemisphere adds that hemisphere's entries to the
// output container, and a read of a hemisphere before its FindJet call is
// undefined.
type Metric interface {
	// Name identifies the detection method.
	Name() string
	// FindJet locates the jet for the southern (shemis true) or
	// northern hemisphere and stores the results in the output
	// container.
	FindJet(shemis bool) error
	// Output returns the metric's accumulated output.
	Output() *Output
}

// Output holds per-hemisphere jet quantities keyed
// "{lat|theta|intens}_{nh|sh}", each an array over (time) or (time, lon)
// depending on the zonal reduction. Missing samples are NaN.
type Output struct {
	Time []time.Time
	// Lon is nil when the output was zonally reduced.
	Lon  []float64
	Data map[string]*sparse.DenseArray
}

// newOutput creates an empty output container.
func newOutput() *Output {
	return &Output{Data: make(map[string]*sparse.DenseArray)}
}

// Append concatenates other onto o along the time axis, for combining
// results from consecutive analysis periods. Both outputs must hold the
// same variable keys with the same non-time shape.
func (o *Output) Append(other *Output) error {
	if len(o.Data) != len(other.Data) {
		return fmt.Errorf("stj: appending output with %d variables to one with %d", len(other.Data), len(o.Data))
	}
	for key, a := range o.Data {
		b, ok := other.Data[key]
		if !ok {
			return fmt.Errorf("stj: appended output is missing variable %s", key)
		}
		if len(a.Shape) != len(b.Shape) {
			return fmt.Errorf("stj: variable %s: appending %d-d array to %d-d array", key, len(b.Shape), len(a.Shape))
		}
		for d := 1; d < len(a.Shape); d++ {
			if a.Shape[d] != b.Shape[d] {
				return fmt.Errorf("stj: variable %s: dimension %d mismatch (%d vs %d)", key, d, a.Shape[d], b.Shape[d])
			}
		}
		shape := append([]int(nil), a.Shape...)
		shape[0] += b.Shape[0]
		out := sparse.ZerosDense(shape...)
		copy(out.Elements, a.Elements)
		copy(out.Elements[len(a.Elements):], b.Elements)
		o.Data[key] = out
	}
	o.Time = append(o.Time, other.Time...)
	return nil
}

// metricBase carries the state shared by all metrics: the configuration,
// logger, input field reference, and output container.
type metricBase struct {
	name string
	cfg  Config
	log  *logrus.Logger
	data *Field
	out  *Output
}

func newMetricBase(name string, cfg Config, data *Field, log *logrus.Logger) metricBase {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return metricBase{name: name, cfg: cfg, log: log, data: data, out: newOutput()}
}

// Name implements Metric.
func (b *metricBase) Name() string { return b.name }

// Output implements Metric.
func (b *metricBase) Output() *Output { return b.out }

// hemis returns the hemisphere selection window for this run's
// configuration and the field's latitude direction.
func (b *metricBase) hemis(shemis bool) hemisWindow {
	return hemisphere(shemis, b.cfg.MinLat, b.cfg.MaxLat, b.data.LatDescending())
}

// variable returns the named logical variable, which must be present.
func (b *metricBase) variable(name string) (*Variable, error) {
	v, ok := b.data.Vars[name]
	if !ok {
		return nil, fmt.Errorf("stj: %s metric: field has no %s variable", b.name, name)
	}
	return v, nil
}

// levelIndex returns the index of the level whose coordinate equals want
// to within a relative tolerance; levels the file does not carry are a
// configuration error, not an interpolation target.
func (b *metricBase) levelIndex(want float64) (int, error) {
	for k, v := range b.data.Lev {
		if math.Abs(v-want) <= 1e-6*math.Max(math.Abs(v), math.Abs(want)) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("stj: %s metric: level %g not present in level axis", b.name, want)
}

// store reduces a (time, lon) quantity per the zonal option and stores it
// under key. The reduced time axis is recorded on the first store.
func (b *metricBase) store(key string, a *sparse.DenseArray) {
	b.out.Time = b.data.Time
	switch b.cfg.ZonalOpt {
	case ZonalMean:
		b.out.Data[key] = reduceLon(a, nanMean)
	case ZonalMedian:
		b.out.Data[key] = reduceLon(a, nanMedian)
	default:
		b.out.Lon = b.data.Lon
		b.out.Data[key] = a
	}
}

// reduceLon reduces a 2-d (time, lon) array to (time) with fn.
func reduceLon(a *sparse.DenseArray, fn func([]float64) float64) *sparse.DenseArray {
	nt, nx := a.Shape[0], a.Shape[1]
	out := sparse.ZerosDense(nt)
	row := make([]float64, nx)
	for t := 0; t < nt; t++ {
		copy(row, a.Elements[t*nx:(t+1)*nx])
		out.Elements[t] = fn(row)
	}
	return out
}

// nanMean is the mean of the finite elements of x, or NaN if there are
// none.
func nanMean(x []float64) float64 {
	var sum float64
	var n int
	for _, v := range x {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// nanMedian is the median of the finite elements of x, or NaN if there are
// none.
func nanMedian(x []float64) float64 {
	valid := x[:0]
	for _, v := range x {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return math.NaN()
	}
	sort.Float64s(valid)
	return stat.Quantile(0.5, stat.LinInterp, valid, nil)
}

// errNoLevels reports an empty level-window selection.
func errNoLevels(name string, lower, upper float64) error {
	return fmt.Errorf("stj: %s metric: no levels between %g and %g in level axis", name, lower, upper)
}

// selectJet resolves a candidate-location set to a single latitude index:
// no candidates means no jet (-1), one candidate is taken as-is, and ties
// between several candidates go to the one with maximum wind shear (the
// first such index when shears are equal).
func selectJet(locs []int, ushear []float64) int {
	switch len(locs) {
	case 0:
		return -1
	case 1:
		return locs[0]
	}
	best := locs[0]
	for _, l := range locs[1:] {
		if ushear[l] > ushear[best] || math.IsNaN(ushear[best]) && !math.IsNaN(ushear[l]) {
			best = l
		}
	}
	return best
}
