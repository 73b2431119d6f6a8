// Package figure is the backend-neutral description of everything the viewer
// draws. Renderers build figures; the chart and export packages turn them
// into echarts pages and image files respectively.
package figure

import "github.com/banshee-data/brainview/internal/colorrange"

// Kind tells backends how to treat a figure.
type Kind string

const (
	KindProjection  Kind = "projection"
	KindButterfly   Kind = "butterfly"
	KindColorbar    Kind = "colorbar"
	KindPlaceholder Kind = "placeholder"
)

// Cell is one non-empty heatmap bin centred on (X, Y) with size W by H.
// Source is the source whose activity won the bin.
type Cell struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
	Value  float64 `json:"value"`
	Source int     `json:"source"`
}

// Heatmap is a binned 2D activity map. Grid holds NaN for empty bins and is
// indexed [row][col] with rows along Y; Cells lists only the filled bins.
type Heatmap struct {
	XEdges   []float64   `json:"x_edges"`
	YEdges   []float64   `json:"y_edges"`
	XCenters []float64   `json:"x_centers"`
	YCenters []float64   `json:"y_centers"`
	Grid     [][]float64 `json:"-"`
	Cells    []Cell      `json:"cells"`
}

// Arrow is one projected vector anchored at (X, Y).
type Arrow struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	U         float64 `json:"u"`
	V         float64 `json:"v"`
	Magnitude float64 `json:"magnitude"`
	Source    int     `json:"source"`
}

// ArrowSet is a group of arrows drawn in one style.
type ArrowSet struct {
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
	Arrows []Arrow `json:"arrows"`
}

// Marker highlights a single source.
type Marker struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Source int     `json:"source"`
	Color  string  `json:"color"`
	Size   int     `json:"size"`
	Open   bool    `json:"open"`
}

// Trace is one line of a time-series plot. Source is set for traces that
// follow a single source, so clicks on them can select it.
type Trace struct {
	Name    string    `json:"name"`
	Source  *int      `json:"source,omitempty"`
	X       []float64 `json:"x"`
	Y       []float64 `json:"y"`
	Color   string    `json:"color,omitempty"`
	Width   float64   `json:"width"`
	Opacity float64   `json:"opacity"`
}

// VLine is a vertical marker line.
type VLine struct {
	X     float64 `json:"x"`
	Color string  `json:"color"`
	Dash  bool    `json:"dash"`
}

// AxisLayout describes one axis. Fixed axes use Min/Max verbatim.
type AxisLayout struct {
	Title     string  `json:"title,omitempty"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Fixed     bool    `json:"fixed"`
	HideTicks bool    `json:"hide_ticks"`
}

// Margin is a pixel margin.
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// Layout carries figure-level presentation.
type Layout struct {
	Title       string     `json:"title,omitempty"`
	XAxis       AxisLayout `json:"xaxis"`
	YAxis       AxisLayout `json:"yaxis"`
	Height      int        `json:"height"`
	Margin      Margin     `json:"margin"`
	EqualAspect bool       `json:"equal_aspect"`
	ShowLegend  bool       `json:"show_legend"`
}

// Figure is a complete drawable panel.
type Figure struct {
	Kind         Kind              `json:"kind"`
	View         string            `json:"view,omitempty"`
	Heatmap      *Heatmap          `json:"heatmap,omitempty"`
	ColorRange   *colorrange.Range `json:"color_range,omitempty"`
	ColorScale   ColorScale        `json:"color_scale"`
	ShowColorbar bool              `json:"show_colorbar"`
	Arrows       []ArrowSet        `json:"arrows,omitempty"`
	Markers      []Marker          `json:"markers,omitempty"`
	Traces       []Trace           `json:"traces,omitempty"`
	TimeMarker   *VLine            `json:"time_marker,omitempty"`
	Annotation   string            `json:"annotation,omitempty"`
	Layout       Layout            `json:"layout"`
}

// Placeholder builds an empty panel carrying only a message.
func Placeholder(view, msg string, height int) *Figure {
	return &Figure{
		Kind:       KindPlaceholder,
		View:       view,
		Annotation: msg,
		Layout: Layout{
			Height: height,
			XAxis:  AxisLayout{HideTicks: true},
			YAxis:  AxisLayout{HideTicks: true},
		},
	}
}

// IsPlaceholder reports whether f only carries a message.
func (f *Figure) IsPlaceholder() bool {
	return f != nil && f.Kind == KindPlaceholder
}

// ArrowCount returns the number of arrows across all sets.
func (f *Figure) ArrowCount() int {
	n := 0
	for _, s := range f.Arrows {
		n += len(s.Arrows)
	}
	return n
}
