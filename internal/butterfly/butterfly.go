// Package butterfly draws the source time-series overview: mean and max
// activity across sources, an optional strided subset of individual sources,
// and the selected-time marker.
package butterfly

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/brainview/internal/brain"
	"github.com/banshee-data/brainview/internal/figure"
	"github.com/banshee-data/brainview/internal/layout"
)

const (
	// strideTarget sets the stride so that roughly this many sources are
	// spread across the whole index range.
	strideTarget = 20
	// maxSourceTraces caps how many individual sources are drawn.
	maxSourceTraces = 10

	meanColor   = "red"
	maxColor    = "darkblue"
	markerColor = "blue"
)

// Options controls the butterfly figure.
type Options struct {
	ShowMaxOnly bool
	ShowLabels  bool
	Size        layout.FigureSize
}

// Unit is a display scaling for activity values.
type Unit struct {
	Factor float64
	Suffix string
}

// UnitFor picks the scale that brings maxAbs into a readable range. It only
// affects presentation.
func UnitFor(maxAbs float64) Unit {
	switch {
	case maxAbs < 1e-10:
		return Unit{Factor: 1e12, Suffix: " (pA)"}
	case maxAbs < 1e-6:
		return Unit{Factor: 1e9, Suffix: " (nA)"}
	case maxAbs < 1e-3:
		return Unit{Factor: 1e6, Suffix: " (µA)"}
	}
	return Unit{Factor: 1}
}

// SourceIndices returns the sources drawn as individual traces.
func SourceIndices(n int) []int {
	step := max(1, n/strideTarget)
	var out []int
	for i := 0; i < n && len(out) < maxSourceTraces; i += step {
		out = append(out, i)
	}
	return out
}

// Render draws the butterfly plot with the marker at timeIndex. An
// out-of-range index draws no marker.
func Render(data *brain.Dataset, timeIndex int, opts Options) *figure.Figure {
	if data.Empty() {
		return figure.Placeholder("butterfly", "No data loaded", opts.Size.Height)
	}

	nSources, nTimes := data.NumSources(), data.NumTimes()
	maxAbs := 0.0
	for _, row := range data.Magnitude {
		for _, v := range row {
			maxAbs = math.Max(maxAbs, math.Abs(v))
		}
	}
	unit := UnitFor(maxAbs)

	scaled := make([][]float64, nSources)
	for n, row := range data.Magnitude {
		scaled[n] = append([]float64(nil), row...)
		floats.Scale(unit.Factor, scaled[n])
	}

	fig := &figure.Figure{Kind: figure.KindButterfly}
	if !opts.ShowMaxOnly {
		for _, n := range SourceIndices(nSources) {
			src := n
			fig.Traces = append(fig.Traces, figure.Trace{
				Name:    fmt.Sprintf("Source %d", n),
				Source:  &src,
				X:       data.Times,
				Y:       scaled[n],
				Width:   1,
				Opacity: 0.6,
			})
		}
	}

	mean := make([]float64, nTimes)
	peak := make([]float64, nTimes)
	column := make([]float64, nSources)
	for t := range nTimes {
		for n := range scaled {
			column[n] = scaled[n][t]
		}
		mean[t] = stat.Mean(column, nil)
		peak[t] = floats.Max(column)
	}
	fig.Traces = append(fig.Traces,
		figure.Trace{Name: "Mean Activity", X: data.Times, Y: mean, Color: meanColor, Width: 3, Opacity: 1},
		figure.Trace{Name: "Max Activity", X: data.Times, Y: peak, Color: maxColor, Width: 3, Opacity: 1},
	)

	if data.ValidTime(timeIndex) {
		fig.TimeMarker = &figure.VLine{X: data.Times[timeIndex], Color: markerColor, Dash: true}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range scaled {
		lo = math.Min(lo, floats.Min(row))
		hi = math.Max(hi, floats.Max(row))
	}
	margin := 1.0
	if hi != lo {
		margin = (hi - lo) * 0.1
	}

	fig.Layout = figure.Layout{
		XAxis:      figure.AxisLayout{Min: data.Times[0], Max: data.Times[nTimes-1], Fixed: true},
		YAxis:      figure.AxisLayout{Min: lo - margin, Max: hi + margin, Fixed: true},
		Height:     opts.Size.Height,
		Margin:     opts.Size.Margin,
		ShowLegend: opts.ShowLabels,
	}
	if opts.ShowLabels {
		if opts.ShowMaxOnly {
			fig.Layout.Title = fmt.Sprintf("Source Activity Time Series - Mean & Max (%d sources)", nSources)
		} else {
			fig.Layout.Title = fmt.Sprintf("Source Activity Time Series (subset of %d sources)", nSources)
		}
		fig.Layout.XAxis.Title = "Time (s)"
		fig.Layout.YAxis.Title = "Activity" + unit.Suffix
	}
	return fig
}

// NearestTimeIndex resolves a continuous time to the closest sample.
// Ties go to the earlier sample. An empty axis returns 0.
func NearestTimeIndex(times []float64, t float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, v := range times {
		if d := math.Abs(v - t); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
