package export

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	vgrec "gonum.org/v1/plot/vg/recorder"

	"github.com/banshee-data/brainview/internal/colorrange"
	"github.com/banshee-data/brainview/internal/figure"
	"github.com/banshee-data/brainview/internal/viewer"
)

// unitLengths returns how long d data units are along x and y once p is
// drawn on a w×h page.
func unitLengths(p *plot.Plot, w, h vg.Length, d float64) (x, y vg.Length) {
	da := p.DataCanvas(draw.NewCanvas(new(vgrec.Canvas), w, h))
	trX, trY := p.Transforms(&da)
	return trX(d) - trX(0), trY(d) - trY(0)
}

func TestPlot_ProjectionEqualAspect(t *testing.T) {
	cr := colorrange.Range{Min: 0, Max: 1}
	for _, box := range []struct{ xMin, xMax, yMin, yMax float64 }{
		{-0.1, 0.1, -0.02, 0.02},
		{-0.01, 0.01, -0.08, 0.08},
	} {
		f := &figure.Figure{
			Kind:       figure.KindProjection,
			ColorRange: &cr,
			ColorScale: figure.ColorScale{Name: "Viridis"},
			Heatmap:    &figure.Heatmap{Cells: []figure.Cell{{X: 0, Y: 0, W: 0.01, H: 0.01, Value: 0.5}}},
			Layout: figure.Layout{
				XAxis:       figure.AxisLayout{Min: box.xMin, Max: box.xMax, Fixed: true, HideTicks: true},
				YAxis:       figure.AxisLayout{Min: box.yMin, Max: box.yMax, Fixed: true, HideTicks: true},
				EqualAspect: true,
			},
		}
		p, err := Plot(f)
		require.NoError(t, err)

		// The requested box stays visible.
		assert.LessOrEqual(t, p.X.Min, box.xMin)
		assert.GreaterOrEqual(t, p.X.Max, box.xMax)
		assert.LessOrEqual(t, p.Y.Min, box.yMin)
		assert.GreaterOrEqual(t, p.Y.Max, box.yMax)

		w, h := Size(f.Kind)
		x, y := unitLengths(p, w, h, 0.01)
		assert.InDelta(t, float64(x), float64(y), 1e-6)
	}
}

func TestPlot_ViewerFiguresEqualAspect(t *testing.T) {
	v := testViewer(t)
	src := 1
	figs, errs := v.ViewFigures(viewer.Selection{TimeIndex: 1, Source: &src})
	require.Empty(t, errs)
	for _, f := range figs {
		p, err := Plot(f)
		require.NoError(t, err)
		w, h := Size(f.Kind)
		x, y := unitLengths(p, w, h, 0.01)
		assert.InEpsilon(t, float64(x), float64(y), 1e-3, f.View)
	}
}

func TestPlot_ProjectionUsesFixedAxes(t *testing.T) {
	cr := colorrange.Range{Min: 0, Max: 1}
	f := &figure.Figure{
		Kind:       figure.KindProjection,
		ColorRange: &cr,
		ColorScale: figure.ColorScale{Name: "Viridis"},
		Heatmap:    &figure.Heatmap{Cells: []figure.Cell{{X: 0, Y: 0, W: 0.1, H: 0.1, Value: 0.5}}},
		Arrows:     []figure.ArrowSet{{Color: "black", Width: 1, Arrows: []figure.Arrow{{X: 0, Y: 0, U: 0.05, V: 0}}}},
		Markers:    []figure.Marker{{X: 0, Y: 0, Color: "cyan", Size: 10, Open: true}},
		Layout: figure.Layout{
			Title: "Axial",
			XAxis: figure.AxisLayout{Title: "x (m)", Min: -1, Max: 1, Fixed: true},
			YAxis: figure.AxisLayout{Min: -2, Max: 2, Fixed: true},
		},
	}
	p, err := Plot(f)
	require.NoError(t, err)
	assert.Equal(t, "Axial", p.Title.Text)
	assert.Equal(t, "x (m)", p.X.Label.Text)
	assert.Equal(t, -1.0, p.X.Min)
	assert.Equal(t, 2.0, p.Y.Max)

	var buf bytes.Buffer
	require.NoError(t, WriteImage(&buf, f, SVG))
	assert.Contains(t, buf.String(), "<svg")
}

func TestPlot_Butterfly(t *testing.T) {
	src := 1
	f := &figure.Figure{
		Kind: figure.KindButterfly,
		Traces: []figure.Trace{
			{Name: "Mean", X: []float64{0, 1}, Y: []float64{0, 1}, Color: "red", Width: 2, Opacity: 1},
			{Name: "Source 1", Source: &src, X: []float64{0, 1}, Y: []float64{1, 0}, Width: 1, Opacity: 0.5},
		},
		TimeMarker: &figure.VLine{X: 0.5, Color: "blue", Dash: true},
		Layout:     figure.Layout{YAxis: figure.AxisLayout{Min: 0, Max: 1}},
	}
	p, err := Plot(f)
	require.NoError(t, err)
	assert.True(t, p.Legend.Top)

	var buf bytes.Buffer
	require.NoError(t, WriteImage(&buf, f, PNG))
	assert.NotZero(t, buf.Len())
}

func TestPlot_Placeholder(t *testing.T) {
	p, err := Plot(figure.Placeholder("axial", "No data", 200))
	require.NoError(t, err)
	assert.Equal(t, "No data", p.Title.Text)
}

func TestPlot_Errors(t *testing.T) {
	_, err := Plot(nil)
	assert.Error(t, err)
	_, err = Plot(&figure.Figure{Kind: figure.KindColorbar})
	assert.Error(t, err)
	_, err = Plot(&figure.Figure{Kind: figure.KindButterfly, Traces: []figure.Trace{{Name: "bad", X: []float64{0}, Y: []float64{0}, Color: "#zz"}}})
	assert.Error(t, err)
}

func TestWithOpacity(t *testing.T) {
	c := withOpacity(color.NRGBA{R: 255, A: 255}, 0.5)
	assert.Equal(t, uint8(128), c.(color.NRGBA).A)
	assert.Equal(t, color.Black, withOpacity(color.Black, 1))
}
