// Package colorrange computes the single colour scale shared by every view
// and every time step of a viewer.
package colorrange

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// minSpan is the smallest usable colour-scale width.
const minSpan = 1e-10

// Range is a colour-scale interval.
type Range struct {
	Min float64 `json:"vmin"`
	Max float64 `json:"vmax"`
}

// Overrides optionally pins either end of the scale.
type Overrides struct {
	Min *float64
	Max *float64
}

// Compute returns the global range over the whole magnitude tensor, indexed
// [source][time]. The lower end is 0 unless overridden; the upper end is the
// tensor maximum unless overridden. A zero-width result is widened to 1.
func Compute(magnitude [][]float64, o Overrides) Range {
	r := Range{Min: 0, Max: dataMax(magnitude)}
	if o.Min != nil {
		r.Min = *o.Min
	}
	if o.Max != nil {
		r.Max = *o.Max
	}
	if r.Max-r.Min < minSpan {
		r.Max = r.Min + 1
	}
	return r
}

func dataMax(magnitude [][]float64) float64 {
	m := math.Inf(-1)
	for _, row := range magnitude {
		if len(row) > 0 {
			m = math.Max(m, floats.Max(row))
		}
	}
	if math.IsInf(m, -1) {
		return 1
	}
	return m
}

// Normalize maps v into [0, 1] on r, clamping outside values.
func (r Range) Normalize(v float64) float64 {
	f := (v - r.Min) / (r.Max - r.Min)
	return math.Max(0, math.Min(1, f))
}
