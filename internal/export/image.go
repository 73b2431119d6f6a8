package export

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	vgrec "gonum.org/v1/plot/vg/recorder"

	"github.com/banshee-data/brainview/internal/colorrange"
	"github.com/banshee-data/brainview/internal/figure"
)

const (
	butterflyWidth  = 12 * vg.Inch
	butterflyHeight = 6 * vg.Inch
	viewWidth       = 8 * vg.Inch
	viewHeight      = 6 * vg.Inch

	arrowHead      = 4 * vg.Millimeter
	arrowHeadAngle = 25 * math.Pi / 180

	// aspectPasses bounds the fitting loop; tick labels and glyph padding
	// move the data area slightly after each widening.
	aspectPasses = 4
	aspectTol    = 1e-9
)

// Size returns the page size used for a figure kind.
func Size(k figure.Kind) (w, h vg.Length) {
	if k == figure.KindButterfly {
		return butterflyWidth, butterflyHeight
	}
	return viewWidth, viewHeight
}

// WriteImage draws f in the given format (png, jpg, svg or pdf) to w.
func WriteImage(w io.Writer, f *figure.Figure, format Format) error {
	p, err := Plot(f)
	if err != nil {
		return err
	}
	width, height := Size(f.Kind)
	wt, err := p.WriterTo(width, height, string(format))
	if err != nil {
		return fmt.Errorf("create %s canvas: %w", format, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// Plot converts a figure into a gonum plot.
func Plot(f *figure.Figure) (*plot.Plot, error) {
	if f == nil {
		return nil, fmt.Errorf("nil figure")
	}
	p := plot.New()
	p.Title.Text = f.Layout.Title
	p.X.Label.Text = f.Layout.XAxis.Title
	p.Y.Label.Text = f.Layout.YAxis.Title

	var err error
	switch f.Kind {
	case figure.KindProjection:
		err = addProjection(p, f)
	case figure.KindButterfly:
		err = addButterfly(p, f)
	case figure.KindPlaceholder:
		p.Title.Text = f.Annotation
		p.HideAxes()
	default:
		err = fmt.Errorf("figure kind %q cannot be exported", f.Kind)
	}
	if err != nil {
		return nil, err
	}
	fixAxes(p, f.Layout)
	if f.Layout.EqualAspect {
		w, h := Size(f.Kind)
		equalAspect(p, w, h)
	}
	return p, nil
}

func fixAxes(p *plot.Plot, l figure.Layout) {
	if l.XAxis.Fixed {
		p.X.Min, p.X.Max = l.XAxis.Min, l.XAxis.Max
	}
	if l.YAxis.Fixed {
		p.Y.Min, p.Y.Max = l.YAxis.Min, l.YAxis.Max
	}
	if l.XAxis.HideTicks {
		p.HideX()
	}
	if l.YAxis.HideTicks {
		p.HideY()
	}
}

// equalAspect widens the shorter axis about its centre until one data unit
// spans the same length on both axes of a w×h page.
func equalAspect(p *plot.Plot, w, h vg.Length) {
	page := draw.NewCanvas(new(vgrec.Canvas), w, h)
	for i := 0; i < aspectPasses; i++ {
		da := p.DataCanvas(page)
		cw, ch := float64(da.Max.X-da.Min.X), float64(da.Max.Y-da.Min.Y)
		xs, ys := p.X.Max-p.X.Min, p.Y.Max-p.Y.Min
		if cw <= 0 || ch <= 0 || xs <= 0 || ys <= 0 {
			return
		}
		xr, yr := xs/cw, ys/ch
		if math.Abs(xr-yr) <= aspectTol*math.Max(xr, yr) {
			return
		}
		if xr > yr {
			p.Y.Min, p.Y.Max = widen(p.Y.Min, p.Y.Max, xr*ch)
		} else {
			p.X.Min, p.X.Max = widen(p.X.Min, p.X.Max, yr*cw)
		}
	}
}

func widen(lo, hi, span float64) (float64, float64) {
	c := (lo + hi) / 2
	return c - span/2, c + span/2
}

func addProjection(p *plot.Plot, f *figure.Figure) error {
	if f.Heatmap == nil {
		if f.Annotation != "" {
			p.Title.Text = f.Annotation
		}
		return nil
	}
	cols, err := f.ColorScale.Colors()
	if err != nil {
		return err
	}
	cr := colorrange.Range{Min: 0, Max: 1}
	if f.ColorRange != nil {
		cr = *f.ColorRange
	}
	p.Add(cellPlotter{cells: f.Heatmap.Cells, colors: cols, rng: cr})

	for _, set := range f.Arrows {
		col, err := figure.ParseColor(set.Color)
		if err != nil {
			return err
		}
		p.Add(arrowPlotter{arrows: set.Arrows, style: draw.LineStyle{Color: col, Width: vg.Points(set.Width)}})
	}

	for _, m := range f.Markers {
		col, err := figure.ParseColor(m.Color)
		if err != nil {
			return err
		}
		s, err := plotter.NewScatter(plotter.XYs{{X: m.X, Y: m.Y}})
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = col
		s.GlyphStyle.Radius = vg.Points(float64(m.Size) / 2)
		if m.Open {
			s.GlyphStyle.Shape = draw.RingGlyph{}
		} else {
			s.GlyphStyle.Shape = draw.CircleGlyph{}
		}
		p.Add(s)
	}
	return nil
}

func addButterfly(p *plot.Plot, f *figure.Figure) error {
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	for _, tr := range f.Traces {
		xys := make(plotter.XYs, len(tr.X))
		for i := range tr.X {
			xys[i] = plotter.XY{X: tr.X[i], Y: tr.Y[i]}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("trace %s: %w", tr.Name, err)
		}
		col := color.Color(color.Gray{Y: 0x80})
		if tr.Color != "" {
			if col, err = figure.ParseColor(tr.Color); err != nil {
				return err
			}
		}
		line.Color = withOpacity(col, tr.Opacity)
		line.Width = vg.Points(tr.Width)
		p.Add(line)
		if tr.Source == nil {
			p.Legend.Add(tr.Name, line)
		}
	}

	if m := f.TimeMarker; m != nil {
		y0, y1 := f.Layout.YAxis.Min, f.Layout.YAxis.Max
		line, err := plotter.NewLine(plotter.XYs{{X: m.X, Y: y0}, {X: m.X, Y: y1}})
		if err != nil {
			return err
		}
		col, err := figure.ParseColor(m.Color)
		if err != nil {
			return err
		}
		line.Color = col
		line.Width = vg.Points(2)
		if m.Dash {
			line.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		}
		p.Add(line)
	}
	return nil
}

func withOpacity(c color.Color, opacity float64) color.Color {
	if opacity <= 0 || opacity >= 1 {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(opacity * 255))
	return n
}

// cellPlotter fills every heatmap bin with its exact extent. Empty bins are
// not part of the figure and stay transparent.
type cellPlotter struct {
	cells  []figure.Cell
	colors []color.Color
	rng    colorrange.Range
}

func (cp cellPlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	var pa vg.Path
	for _, cell := range cp.cells {
		x0, x1 := trX(cell.X-cell.W/2), trX(cell.X+cell.W/2)
		y0, y1 := trY(cell.Y-cell.H/2), trY(cell.Y+cell.H/2)
		pa = pa[:0]
		pa.Move(vg.Point{X: x0, Y: y0})
		pa.Line(vg.Point{X: x1, Y: y0})
		pa.Line(vg.Point{X: x1, Y: y1})
		pa.Line(vg.Point{X: x0, Y: y1})
		pa.Close()
		c.SetColor(figure.Interpolate(cp.colors, cp.rng.Normalize(cell.Value)))
		c.Fill(pa)
	}
}

func (cp cellPlotter) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, cell := range cp.cells {
		xmin = math.Min(xmin, cell.X-cell.W/2)
		xmax = math.Max(xmax, cell.X+cell.W/2)
		ymin = math.Min(ymin, cell.Y-cell.H/2)
		ymax = math.Max(ymax, cell.Y+cell.H/2)
	}
	return xmin, xmax, ymin, ymax
}

// arrowPlotter draws each arrow as a shaft from its anchor plus a two-stroke
// head at the tip.
type arrowPlotter struct {
	arrows []figure.Arrow
	style  draw.LineStyle
}

func (ap arrowPlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, a := range ap.arrows {
		x0, y0 := trX(a.X), trY(a.Y)
		x1, y1 := trX(a.X+a.U), trY(a.Y+a.V)
		c.StrokeLine2(ap.style, x0, y0, x1, y1)

		angle := math.Atan2(float64(y1-y0), float64(x1-x0))
		for _, side := range []float64{-1, 1} {
			back := angle + math.Pi + side*arrowHeadAngle
			hx := x1 + vg.Length(math.Cos(back))*arrowHead
			hy := y1 + vg.Length(math.Sin(back))*arrowHead
			c.StrokeLine2(ap.style, x1, y1, hx, hy)
		}
	}
}
