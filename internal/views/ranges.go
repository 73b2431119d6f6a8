package views

import (
	"math"

	"github.com/banshee-data/brainview/internal/brain"
)

const (
	rangePadFraction = 0.05
	degeneratePad    = 0.01
)

// Axis is a closed interval on one plot axis.
type Axis struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max-Min.
func (a Axis) Span() float64 { return a.Max - a.Min }

// Center returns the interval midpoint.
func (a Axis) Center() float64 { return (a.Min + a.Max) / 2 }

// Box is the fixed 2D extent of one view.
type Box struct {
	X Axis `json:"x"`
	Y Axis `json:"y"`
}

// Project maps a 3D coordinate onto the view plane. The left hemisphere is
// seen from the outside, so its horizontal axis runs along -y.
func Project(v ViewID, c brain.Coord) (x, y float64) {
	switch v {
	case Axial:
		return c.X, c.Y
	case Sagittal:
		return c.Y, c.Z
	case Coronal:
		return c.X, c.Z
	case LeftHemisphere:
		return -c.Y, c.Z
	case RightHemisphere:
		return c.Y, c.Z
	}
	return math.NaN(), math.NaN()
}

// ProjectVector maps a 3D vector onto the view plane with the same axis
// convention as Project.
func ProjectVector(v ViewID, vx, vy, vz float64) (u, w float64) {
	switch v {
	case Axial:
		return vx, vy
	case Sagittal:
		return vy, vz
	case Coronal:
		return vx, vz
	case LeftHemisphere:
		return -vy, vz
	case RightHemisphere:
		return vy, vz
	}
	return math.NaN(), math.NaN()
}

// InHemisphere reports whether c belongs to the hemisphere shown by v.
// Midline sources belong to both; non-hemisphere views accept everything.
func InHemisphere(v ViewID, c brain.Coord) bool {
	switch v {
	case LeftHemisphere:
		return c.X <= 0
	case RightHemisphere:
		return c.X >= 0
	}
	return true
}

// ComputeRanges returns the padded bounding box of all coordinates for each
// view. Hemisphere views use every coordinate, not just their own side, so
// the left and right panels share one scale.
func ComputeRanges(coords []brain.Coord, views []ViewID) map[ViewID]Box {
	out := make(map[ViewID]Box, len(views))
	for _, v := range views {
		out[v] = viewBox(v, coords)
	}
	return out
}

func viewBox(v ViewID, coords []brain.Coord) Box {
	if len(coords) == 0 {
		return Box{X: Axis{Min: -1, Max: 1}, Y: Axis{Min: -1, Max: 1}}
	}
	xs := Axis{Min: math.Inf(1), Max: math.Inf(-1)}
	ys := xs
	for _, c := range coords {
		x, y := Project(v, c)
		xs.Min, xs.Max = math.Min(xs.Min, x), math.Max(xs.Max, x)
		ys.Min, ys.Max = math.Min(ys.Min, y), math.Max(ys.Max, y)
	}
	return Box{X: pad(xs), Y: pad(ys)}
}

func pad(a Axis) Axis {
	p := a.Span() * rangePadFraction
	if a.Span() == 0 {
		p = degeneratePad
	}
	return Axis{Min: a.Min - p, Max: a.Max + p}
}

// UnifySizes recentres every box to the widest span found across all views
// and both axes, giving every panel the same square footprint.
func UnifySizes(boxes map[ViewID]Box) map[ViewID]Box {
	width := 0.0
	for _, b := range boxes {
		width = math.Max(width, math.Max(b.X.Span(), b.Y.Span()))
	}
	half := width / 2
	out := make(map[ViewID]Box, len(boxes))
	for v, b := range boxes {
		cx, cy := b.X.Center(), b.Y.Center()
		out[v] = Box{
			X: Axis{Min: cx - half, Max: cx + half},
			Y: Axis{Min: cy - half, Max: cy + half},
		}
	}
	return out
}
