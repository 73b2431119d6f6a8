// Package viewer ties the renderers together. A Viewer is configured once
// from a dataset and options and never changes; the per-user selection lives
// in a Session that is handed to every render call.
package viewer

import (
	"errors"
	"fmt"

	"github.com/banshee-data/brainview/internal/brain"
	"github.com/banshee-data/brainview/internal/butterfly"
	"github.com/banshee-data/brainview/internal/colorrange"
	"github.com/banshee-data/brainview/internal/figure"
	"github.com/banshee-data/brainview/internal/layout"
	"github.com/banshee-data/brainview/internal/monitoring"
	"github.com/banshee-data/brainview/internal/projection"
	"github.com/banshee-data/brainview/internal/views"
)

var logf = monitoring.For("viewer")

// Options configures a Viewer. The zero value is usable and matches
// DefaultOptions except for the arrow scale, which falls back to 1.
type Options struct {
	ColorScale     figure.ColorScale
	VMin           *float64
	VMax           *float64
	ShowMaxOnly    bool
	ShowLabels     bool
	ArrowThreshold projection.ArrowThreshold
	ArrowScale     float64
	Layout         layout.Mode
	Display        views.DisplayMode
	Environment    layout.Environment
	// PlotHeight and ButterflyHeight replace the environment defaults when
	// positive.
	PlotHeight      int
	ButterflyHeight int
	// Realtime is the initial realtime state of new sessions.
	Realtime bool
}

// DefaultOptions returns the standard browser configuration.
func DefaultOptions() Options {
	return Options{
		ColorScale:  figure.ColorScale{Name: figure.DefaultColorScale},
		ArrowScale:  1,
		Layout:      layout.Vertical,
		Display:     views.DefaultDisplayMode,
		Environment: layout.Browser,
	}
}

// Viewer renders a fixed dataset under a fixed configuration.
type Viewer struct {
	data   *brain.Dataset
	opts   Options
	views  []views.ViewID
	ranges map[views.ViewID]views.Box
	colors colorrange.Range
	layout layout.Spec
}

// New validates opts against data and precomputes everything that does not
// depend on the selection. An unknown display mode is returned as
// *views.UnsupportedModeError.
func New(data *brain.Dataset, opts Options) (*Viewer, error) {
	if data == nil {
		return nil, &brain.DataShapeError{Field: "data", Reason: "no dataset"}
	}

	display, err := views.ParseDisplayMode(string(opts.Display))
	if err != nil {
		return nil, err
	}
	opts.Display = display
	ids, err := views.Resolve(display)
	if err != nil {
		return nil, err
	}

	if opts.Layout, err = layout.ParseMode(string(opts.Layout)); err != nil {
		return nil, err
	}
	if opts.Environment, err = layout.ParseEnvironment(string(opts.Environment)); err != nil {
		return nil, err
	}
	if opts.ColorScale.Name == "" && len(opts.ColorScale.Stops) == 0 {
		opts.ColorScale.Name = figure.DefaultColorScale
	}
	if _, err := opts.ColorScale.Colors(); err != nil {
		return nil, err
	}
	switch {
	case opts.ArrowScale == 0:
		opts.ArrowScale = 1
	case opts.ArrowScale < 0:
		return nil, fmt.Errorf("arrow scale must be positive, got %g", opts.ArrowScale)
	}
	if opts.PlotHeight < 0 || opts.ButterflyHeight < 0 {
		return nil, errors.New("figure heights must not be negative")
	}

	ranges := views.ComputeRanges(data.Coords, ids)
	if opts.Environment == layout.Embedded {
		ranges = views.UnifySizes(ranges)
	}

	v := &Viewer{
		data:   data,
		opts:   opts,
		views:  ids,
		ranges: ranges,
		colors: colorrange.Compute(data.Magnitude, colorrange.Overrides{Min: opts.VMin, Max: opts.VMax}),
		layout: layout.Compose(opts.Layout, len(ids), opts.Environment, display),
	}
	logf("%d sources, %d times, vector=%t, views=%v, colour range [%g, %g]",
		data.NumSources(), data.NumTimes(), data.IsVector(), ids, v.colors.Min, v.colors.Max)
	return v, nil
}

// Data returns the dataset being viewed.
func (v *Viewer) Data() *brain.Dataset { return v.data }

// Options returns the normalised options.
func (v *Viewer) Options() Options { return v.opts }

// Views returns the resolved views in display order.
func (v *Viewer) Views() []views.ViewID { return append([]views.ViewID(nil), v.views...) }

// Ranges returns the fixed axis range of every view.
func (v *Viewer) Ranges() map[views.ViewID]views.Box {
	out := make(map[views.ViewID]views.Box, len(v.ranges))
	for k, b := range v.ranges {
		out[k] = b
	}
	return out
}

// ColorRange returns the global colour range.
func (v *Viewer) ColorRange() colorrange.Range { return v.colors }

// Layout returns the dashboard layout.
func (v *Viewer) Layout() layout.Spec { return v.layout }

// ViewFigures renders every view at the selection's time. Views that fail
// are placeholders and their errors are returned alongside.
func (v *Viewer) ViewFigures(sel Selection) ([]*figure.Figure, []error) {
	return projection.RenderAll(v.data, projection.Request{
		Views:     v.views,
		TimeIndex: sel.TimeIndex,
		Selected:  sel.Source,
		Ranges:    v.ranges,
		Options: projection.Options{
			ColorRange:   v.colors,
			ColorScale:   v.opts.ColorScale,
			ShowColorbar: !v.layout.SeparateColorbar,
			ArrowScale:   v.opts.ArrowScale,
			Threshold:    v.opts.ArrowThreshold,
			Size:         layout.ProjectionSize(v.opts.Environment, v.opts.PlotHeight),
		},
	})
}

// ButterflyFigure renders the time series with the marker at the
// selection's time.
func (v *Viewer) ButterflyFigure(sel Selection) *figure.Figure {
	return butterfly.Render(v.data, sel.TimeIndex, butterfly.Options{
		ShowMaxOnly: v.opts.ShowMaxOnly,
		ShowLabels:  v.opts.ShowLabels,
		Size:        layout.ButterflySize(v.opts.Environment, v.opts.ButterflyHeight),
	})
}

// ColorbarFigure returns the standalone horizontal colour bar, or nil when
// the layout attaches the bar to the last view instead.
func (v *Viewer) ColorbarFigure() *figure.Figure {
	if !v.layout.SeparateColorbar {
		return nil
	}
	cr := v.colors
	return &figure.Figure{
		Kind:         figure.KindColorbar,
		ColorRange:   &cr,
		ColorScale:   v.opts.ColorScale,
		ShowColorbar: true,
		Layout: figure.Layout{
			Height: layout.ColorbarHeight,
			XAxis:  figure.AxisLayout{Min: cr.Min, Max: cr.Max, Fixed: true},
			YAxis:  figure.AxisLayout{HideTicks: true},
		},
	}
}

// Frame is everything drawn for one selection.
type Frame struct {
	Selection Selection        `json:"selection"`
	Views     []*figure.Figure `json:"views"`
	Butterfly *figure.Figure   `json:"butterfly"`
	Colorbar  *figure.Figure   `json:"colorbar,omitempty"`
	Info      []string         `json:"info"`
	Errors    []error          `json:"-"`
}

// Render draws the whole dashboard for the session's current selection.
func (v *Viewer) Render(s *Session) Frame {
	sel := s.Snapshot()
	figs, errs := v.ViewFigures(sel)
	return Frame{
		Selection: sel,
		Views:     figs,
		Butterfly: v.ButterflyFigure(sel),
		Colorbar:  v.ColorbarFigure(),
		Info:      v.InfoFor(sel),
		Errors:    errs,
	}
}
