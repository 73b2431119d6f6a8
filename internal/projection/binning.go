package projection

import (
	"math"
	"sort"

	"github.com/banshee-data/brainview/internal/figure"
)

const (
	// singleValuePad is the half-width of a bin when an axis has one value.
	singleValuePad = 0.001

	// positionPrecision snaps positions to 6 decimals before binning and
	// arrow grouping.
	positionPrecision = 1e6
)

func snap(v float64) float64 {
	return math.Round(v*positionPrecision) / positionPrecision
}

// axisBins puts one bin around every distinct value. Interior boundaries sit
// at midpoints between neighbours; the outer ones are padded by half the
// smallest gap.
type axisBins struct {
	values []float64
	edges  []float64
}

func newAxisBins(vals []float64) axisBins {
	u := append([]float64(nil), vals...)
	sort.Float64s(u)
	n := 0
	for i, v := range u {
		if i == 0 || v != u[n-1] {
			u[n] = v
			n++
		}
	}
	u = u[:n]

	half := singleValuePad
	if len(u) > 1 {
		gap := math.Inf(1)
		for i := 1; i < len(u); i++ {
			gap = math.Min(gap, u[i]-u[i-1])
		}
		half = gap / 2
	}

	edges := make([]float64, 0, len(u)+1)
	edges = append(edges, u[0]-half)
	for i := 1; i < len(u); i++ {
		edges = append(edges, (u[i-1]+u[i])/2)
	}
	edges = append(edges, u[len(u)-1]+half)
	return axisBins{values: u, edges: edges}
}

// index returns the bin holding v. v must be one of the binned values.
func (b axisBins) index(v float64) int {
	return sort.SearchFloat64s(b.values, v)
}

func (b axisBins) centers() []float64 {
	out := make([]float64, len(b.values))
	for i := range out {
		out[i] = (b.edges[i] + b.edges[i+1]) / 2
	}
	return out
}

// binMax aggregates values into a 2D grid keeping the maximum per bin. Each
// cell's Source is the position in the input slices that won the bin.
// Positions are snapped first, so sources that share an arrow key share a bin.
func binMax(xs, ys, vals []float64) *figure.Heatmap {
	xs, ys = snapAll(xs), snapAll(ys)
	bx, by := newAxisBins(xs), newAxisBins(ys)
	nx, ny := len(bx.values), len(by.values)

	grid := make([][]float64, ny)
	winner := make([][]int, ny)
	for r := range grid {
		grid[r] = make([]float64, nx)
		winner[r] = make([]int, nx)
		for c := range grid[r] {
			grid[r][c] = math.NaN()
			winner[r][c] = -1
		}
	}
	for i := range xs {
		c, r := bx.index(xs[i]), by.index(ys[i])
		if winner[r][c] < 0 || vals[i] > grid[r][c] {
			grid[r][c] = vals[i]
			winner[r][c] = i
		}
	}

	h := &figure.Heatmap{
		XEdges:   bx.edges,
		YEdges:   by.edges,
		XCenters: bx.centers(),
		YCenters: by.centers(),
		Grid:     grid,
	}
	for r := range grid {
		for c := range grid[r] {
			if winner[r][c] < 0 {
				continue
			}
			h.Cells = append(h.Cells, figure.Cell{
				X:      h.XCenters[c],
				Y:      h.YCenters[r],
				W:      bx.edges[c+1] - bx.edges[c],
				H:      by.edges[r+1] - by.edges[r],
				Value:  grid[r][c],
				Source: winner[r][c],
			})
		}
	}
	return h
}

func snapAll(vs []float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = snap(v)
	}
	return out
}
