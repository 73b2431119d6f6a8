// Package chart turns figures into go-echarts charts for the web dashboard.
package chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/event"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/brainview/internal/figure"
)

// AssetsHost serves the echarts scripts referenced by rendered pages.
const AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

const (
	minCellPx   = 2
	arrowHeadPx = 6
	minPlotPx   = 50
)

// Chart is what every builder in this package returns.
type Chart interface {
	components.Charter
	JSON() map[string]interface{}
	Render(w io.Writer) error
}

// ClickHandler is the page-level JavaScript hook called with the echarts
// event parameters when a chart is clicked. Pages that do not define it
// ignore clicks.
const ClickHandler = "brainviewClick"

// Build converts a figure into an echarts chart.
func Build(f *figure.Figure) (Chart, error) {
	if f == nil {
		return nil, errors.New("nil figure")
	}
	switch f.Kind {
	case figure.KindProjection:
		return projection(f)
	case figure.KindButterfly:
		return butterfly(f), nil
	case figure.KindColorbar:
		return colorbar(f)
	case figure.KindPlaceholder:
		return placeholder(f), nil
	}
	return nil, fmt.Errorf("unknown figure kind %q", f.Kind)
}

// Option returns the echarts option object for f, ready to be passed to
// echarts setOption in the browser.
func Option(f *figure.Figure) (map[string]interface{}, error) {
	c, err := Build(f)
	if err != nil {
		return nil, err
	}
	c.Validate()
	return c.JSON(), nil
}

// MarshalOption encodes the option object as JSON.
func MarshalOption(f *figure.Figure) ([]byte, error) {
	opt, err := Option(f)
	if err != nil {
		return nil, err
	}
	return json.Marshal(opt)
}

// RenderHTML writes f as a standalone echarts page.
func RenderHTML(w io.Writer, f *figure.Figure) error {
	c, err := Build(f)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return fmt.Errorf("render %s chart: %w", f.Kind, err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// Page collects several figures into one echarts page.
func Page(title string, figs ...*figure.Figure) (*components.Page, error) {
	page := components.NewPage()
	page.SetPageTitle(title)
	page.SetAssetsHost(AssetsHost)
	for _, f := range figs {
		c, err := Build(f)
		if err != nil {
			return nil, err
		}
		page.AddCharts(c)
	}
	return page, nil
}

func initOpts(f *figure.Figure) charts.GlobalOpts {
	title := f.Layout.Title
	if title == "" {
		title = string(f.Kind)
	}
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle:  title,
		Width:      "100%",
		Height:     fmt.Sprintf("%dpx", f.Layout.Height),
		AssetsHost: AssetsHost,
	})
}

func gridOpts(m figure.Margin) charts.GlobalOpts {
	return charts.WithGridOpts(opts.Grid{
		Left:         fmt.Sprintf("%dpx", m.L),
		Right:        fmt.Sprintf("%dpx", m.R),
		Top:          fmt.Sprintf("%dpx", m.T),
		Bottom:       fmt.Sprintf("%dpx", m.B),
		ContainLabel: opts.Bool(true),
	})
}

func clickListener() charts.GlobalOpts {
	return charts.WithEventListeners(event.Listener{
		EventName: "click",
		Handler:   opts.FuncOpts(fmt.Sprintf("(params) => window.%[1]s && window.%[1]s(params)", ClickHandler)),
	})
}

func xAxis(a figure.AxisLayout) opts.XAxis {
	x := opts.XAxis{Type: "value", Name: a.Title, NameLocation: "middle", NameGap: 25}
	if a.Fixed {
		x.Min, x.Max = a.Min, a.Max
	}
	if a.HideTicks {
		x.Show = opts.Bool(false)
	}
	return x
}

func yAxis(a figure.AxisLayout) opts.YAxis {
	y := opts.YAxis{Type: "value", Name: a.Title, NameLocation: "middle", NameGap: 30}
	if a.Fixed {
		y.Min, y.Max = a.Min, a.Max
	}
	if a.HideTicks {
		y.Show = opts.Bool(false)
	}
	return y
}

// plotPx approximates the drawable height of a view panel.
func plotPx(l figure.Layout) float64 {
	return math.Max(float64(l.Height-l.Margin.T-l.Margin.B), minPlotPx)
}

// unitPx is the pixel length of one data unit on both axes of an
// equal-aspect view.
func unitPx(l figure.Layout) float64 {
	ySpan := l.YAxis.Max - l.YAxis.Min
	if ySpan <= 0 {
		return 0
	}
	return plotPx(l) / ySpan
}

// projectionGrid pins the plot area to the box's x:y ratio so one data unit
// has the same length on both axes. The dashboard rescales it to the panel.
func projectionGrid(l figure.Layout) charts.GlobalOpts {
	u := unitPx(l)
	if !l.EqualAspect || u <= 0 {
		return gridOpts(l.Margin)
	}
	w := (l.XAxis.Max - l.XAxis.Min) * u
	return charts.WithGridOpts(opts.Grid{
		Left:   "center",
		Top:    fmt.Sprintf("%dpx", l.Margin.T),
		Width:  fmt.Sprintf("%dpx", int(math.Round(w))),
		Height: fmt.Sprintf("%dpx", int(math.Round(plotPx(l)))),
	})
}

func projection(f *figure.Figure) (Chart, error) {
	hexes, err := f.ColorScale.Hex()
	if err != nil {
		return nil, err
	}
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		initOpts(f),
		charts.WithTitleOpts(opts.Title{Title: f.Layout.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(f.Layout.ShowLegend)}),
		charts.WithXAxisOpts(xAxis(f.Layout.XAxis)),
		charts.WithYAxisOpts(yAxis(f.Layout.YAxis)),
		projectionGrid(f.Layout),
		clickListener(),
	)

	// The heatmap is always series 0 so the visual map can be pinned to it.
	var cells []opts.ScatterData
	if f.Heatmap != nil {
		u := unitPx(f.Layout)
		cells = make([]opts.ScatterData, 0, len(f.Heatmap.Cells))
		for _, c := range f.Heatmap.Cells {
			cells = append(cells, opts.ScatterData{
				Value:      []interface{}{c.X, c.Y, c.Value, c.Source},
				SymbolSize: cellPx(c, u),
			})
		}
	}
	scatter.AddSeries("activity", cells, charts.WithScatterChartOpts(opts.ScatterChart{Symbol: "rect"}))

	if f.ColorRange != nil {
		vm := opts.VisualMap{
			Show:       opts.Bool(f.ShowColorbar),
			Calculable: opts.Bool(false),
			Min:        float32(f.ColorRange.Min),
			Max:        float32(f.ColorRange.Max),
			Dimension:  "2",
			Right:      "0",
			Top:        "middle",
			InRange:    &opts.VisualMapInRange{Color: hexes},
		}
		scatter.SetGlobalOptions(charts.WithVisualMapOpts(vm))
		scatter.Accept(heatmapOnly{})
	}

	for _, set := range f.Arrows {
		scatter.AddSeries(set.Name, []opts.ScatterData{}, arrowSeries(set)...)
	}
	for _, m := range f.Markers {
		symbol := "circle"
		if m.Open {
			symbol = "emptyCircle"
		}
		scatter.AddSeries("selected", []opts.ScatterData{{
			Value:      []interface{}{m.X, m.Y, nil, m.Source},
			Symbol:     symbol,
			SymbolSize: m.Size,
		}}, charts.WithItemStyleOpts(opts.ItemStyle{Color: m.Color, BorderColor: m.Color}))
	}
	return scatter, nil
}

func cellPx(c figure.Cell, unit float64) int {
	if unit <= 0 {
		return minCellPx
	}
	return max(int(math.Ceil(math.Min(c.W, c.H)*unit)), minCellPx)
}

// arrowSeries draws every arrow of the set as a mark line from its anchor
// to its tip.
func arrowSeries(set figure.ArrowSet) []charts.SeriesOpts {
	items := make([]opts.MarkLineNameCoordItem, 0, len(set.Arrows))
	for _, a := range set.Arrows {
		items = append(items, opts.MarkLineNameCoordItem{
			Name:        fmt.Sprintf("source %d", a.Source),
			Coordinate0: []interface{}{a.X, a.Y},
			Coordinate1: []interface{}{a.X + a.U, a.Y + a.V},
		})
	}
	return []charts.SeriesOpts{
		charts.WithMarkLineNameCoordItemOpts(items...),
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol:     []string{"none", "arrow"},
			SymbolSize: arrowHeadPx,
			Label:      &opts.Label{Show: opts.Bool(false)},
			LineStyle:  &opts.LineStyle{Color: set.Color, Width: float32(set.Width), Type: "solid"},
		}),
	}
}

func butterfly(f *figure.Figure) Chart {
	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(f),
		charts.WithTitleOpts(opts.Title{Title: f.Layout.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(f.Layout.ShowLegend)}),
		charts.WithXAxisOpts(xAxis(f.Layout.XAxis)),
		charts.WithYAxisOpts(yAxis(f.Layout.YAxis)),
		gridOpts(f.Layout.Margin),
		clickListener(),
	)

	for i, tr := range f.Traces {
		data := make([]opts.LineData, len(tr.X))
		for k := range tr.X {
			v := []interface{}{tr.X[k], tr.Y[k]}
			if tr.Source != nil {
				v = append(v, *tr.Source)
			}
			data[k] = opts.LineData{Value: v}
		}
		series := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: tr.Color, Width: float32(tr.Width), Opacity: opts.Float(float32(tr.Opacity))}),
		}
		if tr.Color != "" {
			series = append(series, charts.WithItemStyleOpts(opts.ItemStyle{Color: tr.Color}))
		}
		if i == 0 && f.TimeMarker != nil {
			series = append(series, timeMarker(*f.TimeMarker)...)
		}
		line.AddSeries(tr.Name, data, series...)
	}
	return line
}

func timeMarker(m figure.VLine) []charts.SeriesOpts {
	style := "solid"
	if m.Dash {
		style = "dashed"
	}
	return []charts.SeriesOpts{
		charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{Name: "time", XAxis: m.X}),
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol:    []string{"none", "none"},
			Label:     &opts.Label{Show: opts.Bool(false)},
			LineStyle: &opts.LineStyle{Color: m.Color, Width: 2, Type: style},
		}),
	}
}

func colorbar(f *figure.Figure) (Chart, error) {
	if f.ColorRange == nil {
		return nil, errors.New("colorbar figure without a colour range")
	}
	hexes, err := f.ColorScale.Hex()
	if err != nil {
		return nil, err
	}
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		initOpts(f),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Show: opts.Bool(false)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(false),
			Min:        float32(f.ColorRange.Min),
			Max:        float32(f.ColorRange.Max),
			Orient:     "horizontal",
			Left:       "center",
			Top:        "middle",
			Text:       []string{fmt.Sprintf("%.3g", f.ColorRange.Max), fmt.Sprintf("%.3g", f.ColorRange.Min)},
			InRange:    &opts.VisualMapInRange{Color: hexes},
		}),
	)
	scatter.AddSeries("colorbar", []opts.ScatterData{})
	return scatter, nil
}

func placeholder(f *figure.Figure) Chart {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		initOpts(f),
		charts.WithTitleOpts(opts.Title{Title: f.Annotation, Left: "center", Top: "middle"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Show: opts.Bool(false)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Show: opts.Bool(false)}),
	)
	scatter.AddSeries(f.View, []opts.ScatterData{})
	return scatter
}
