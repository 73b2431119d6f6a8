// Package projection draws one anatomical view of the dataset at one time
// step: a max-binned activity heatmap, thresholded dipole arrows and the
// selected-source highlight.
package projection

import (
	"errors"
	"fmt"

	"github.com/banshee-data/brainview/internal/brain"
	"github.com/banshee-data/brainview/internal/colorrange"
	"github.com/banshee-data/brainview/internal/figure"
	"github.com/banshee-data/brainview/internal/layout"
	"github.com/banshee-data/brainview/internal/monitoring"
	"github.com/banshee-data/brainview/internal/views"
)

const (
	// baseArrowLength converts the user arrow scale into data units.
	baseArrowLength = 0.025

	batchArrowColor    = "black"
	selectedColor      = "cyan"
	selectedMarkerSize = 12
)

var logf = monitoring.For("projection")

// Options carries everything a view needs besides the data and selection.
type Options struct {
	Range        views.Box
	ColorRange   colorrange.Range
	ColorScale   figure.ColorScale
	ShowColorbar bool
	ArrowScale   float64
	Threshold    ArrowThreshold
	Size         layout.FigureSize
}

// plane holds the sources visible in one view, projected to 2D.
type plane struct {
	index    []int
	x, y     []float64
	u, v     []float64
	activity []float64
}

func project(view views.ViewID, data *brain.Dataset, t int) plane {
	var keep []int
	if view.Hemisphere() {
		for n, c := range data.Coords {
			if views.InHemisphere(view, c) {
				keep = append(keep, n)
			}
		}
	}
	if len(keep) == 0 {
		keep = make([]int, data.NumSources())
		for n := range keep {
			keep[n] = n
		}
	}

	p := plane{
		index:    keep,
		x:        make([]float64, len(keep)),
		y:        make([]float64, len(keep)),
		activity: make([]float64, len(keep)),
	}
	if data.IsVector() {
		p.u = make([]float64, len(keep))
		p.v = make([]float64, len(keep))
	}
	for i, n := range keep {
		p.x[i], p.y[i] = views.Project(view, data.Coords[n])
		p.activity[i] = data.Magnitude[n][t]
		if data.IsVector() {
			vx, vy, vz := data.Vector(n, t)
			p.u[i], p.v[i] = views.ProjectVector(view, vx, vy, vz)
		}
	}
	return p
}

func (p plane) arrow(i int, scale float64) figure.Arrow {
	return figure.Arrow{
		X:         p.x[i],
		Y:         p.y[i],
		U:         p.u[i] * scale,
		V:         p.v[i] * scale,
		Magnitude: p.activity[i],
		Source:    p.index[i],
	}
}

// Render draws view at timeIndex. selected may be nil.
func Render(view views.ViewID, timeIndex int, data *brain.Dataset, selected *int, opts Options) (*figure.Figure, error) {
	if !view.Valid() {
		return nil, &RenderError{View: string(view), Err: errors.New("unknown view")}
	}
	if data == nil {
		return nil, &RenderError{View: string(view), Err: errors.New("no data loaded")}
	}
	if !data.ValidTime(timeIndex) {
		return nil, &RenderError{View: string(view), Err: fmt.Errorf("time index %d out of range [0, %d)", timeIndex, data.NumTimes())}
	}

	fig := &figure.Figure{
		Kind:       figure.KindProjection,
		View:       string(view),
		ColorScale: opts.ColorScale,
		Layout:     viewLayout(opts),
	}
	if data.NumSources() == 0 {
		fig.Annotation = fmt.Sprintf("No active sources for %s view", view)
		return fig, nil
	}

	p := project(view, data, timeIndex)
	cr := opts.ColorRange
	fig.ColorRange = &cr
	fig.ShowColorbar = opts.ShowColorbar

	hm := binMax(p.x, p.y, p.activity)
	for i := range hm.Cells {
		hm.Cells[i].Source = p.index[hm.Cells[i].Source]
	}
	fig.Heatmap = hm

	scale := arrowLength(opts.ArrowScale)
	if data.IsVector() {
		if arrows := batchArrows(p, opts.Threshold, scale); len(arrows) > 0 {
			fig.Arrows = append(fig.Arrows, figure.ArrowSet{
				Name:   "vectors",
				Color:  batchArrowColor,
				Width:  1,
				Arrows: arrows,
			})
		}
	}
	if selected != nil {
		highlight(fig, p, *selected, opts.Threshold, scale)
	}
	return fig, nil
}

func arrowLength(userScale float64) float64 {
	if userScale <= 0 {
		userScale = 1
	}
	return userScale * baseArrowLength
}

func viewLayout(opts Options) figure.Layout {
	return figure.Layout{
		XAxis:       figure.AxisLayout{Min: opts.Range.X.Min, Max: opts.Range.X.Max, Fixed: true, HideTicks: true},
		YAxis:       figure.AxisLayout{Min: opts.Range.Y.Min, Max: opts.Range.Y.Max, Fixed: true, HideTicks: true},
		Height:      opts.Size.Height,
		Margin:      opts.Size.Margin,
		EqualAspect: true,
	}
}

type posKey struct{ x, y float64 }

func keyOf(x, y float64) posKey {
	return posKey{snap(x), snap(y)}
}

// batchArrows applies the threshold and keeps, per 2D position, the source
// with the highest 3D magnitude. That is the same ranking binMax uses, so
// each arrow belongs to the source that coloured its cell.
func batchArrows(p plane, th ArrowThreshold, scale float64) []figure.Arrow {
	cut, limited := th.cutoff(p.activity)
	best := make(map[posKey]int)
	var order []posKey
	for i := range p.index {
		if limited && !(p.activity[i] > cut) {
			continue
		}
		k := keyOf(p.x[i], p.y[i])
		j, seen := best[k]
		if !seen {
			order = append(order, k)
			best[k] = i
			continue
		}
		if p.activity[i] > p.activity[j] {
			best[k] = i
		}
	}
	out := make([]figure.Arrow, 0, len(order))
	for _, k := range order {
		out = append(out, p.arrow(best[k], scale))
	}
	return out
}

// highlight marks the selected source when it is visible in this view, and
// adds its arrow when it passes the same threshold as the batch.
func highlight(fig *figure.Figure, p plane, source int, th ArrowThreshold, scale float64) {
	pos := -1
	for i, n := range p.index {
		if n == source {
			pos = i
			break
		}
	}
	if pos < 0 {
		return
	}
	fig.Markers = append(fig.Markers, figure.Marker{
		X:      p.x[pos],
		Y:      p.y[pos],
		Source: source,
		Color:  selectedColor,
		Size:   selectedMarkerSize,
		Open:   true,
	})
	if p.u == nil {
		return
	}
	if cut, limited := th.cutoff(p.activity); limited && !(p.activity[pos] > cut) {
		return
	}
	fig.Arrows = append(fig.Arrows, figure.ArrowSet{
		Name:   "selected",
		Color:  selectedColor,
		Width:  2,
		Arrows: []figure.Arrow{p.arrow(pos, scale)},
	})
}

// Request renders several views of the same time step.
type Request struct {
	Views     []views.ViewID
	TimeIndex int
	Selected  *int
	Ranges    map[views.ViewID]views.Box
	// Options applies to every view; Range is taken from Ranges and the
	// colour bar, when enabled, is drawn on the last view only.
	Options Options
}

// RenderAll renders every requested view. A view that fails is replaced by
// an "Error: {view}" placeholder and its error is returned alongside; the
// remaining views are unaffected.
func RenderAll(data *brain.Dataset, req Request) ([]*figure.Figure, []error) {
	figs := make([]*figure.Figure, len(req.Views))
	var errs []error
	for i, v := range req.Views {
		opts := req.Options
		if box, ok := req.Ranges[v]; ok {
			opts.Range = box
		} else if data != nil && v.Valid() {
			opts.Range = views.ComputeRanges(data.Coords, []views.ViewID{v})[v]
		}
		opts.ShowColorbar = req.Options.ShowColorbar && i == len(req.Views)-1

		fig, err := renderIsolated(v, req.TimeIndex, data, req.Selected, opts)
		if err != nil {
			logf("%v", err)
			errs = append(errs, err)
			fig = figure.Placeholder(string(v), fmt.Sprintf("Error: %s", v), opts.Size.Height)
		}
		figs[i] = fig
	}
	return figs, errs
}

func renderIsolated(v views.ViewID, t int, data *brain.Dataset, selected *int, opts Options) (fig *figure.Figure, err error) {
	defer func() {
		if r := recover(); r != nil {
			fig = nil
			err = &RenderError{View: string(v), Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return Render(v, t, data, selected, opts)
}
