package butterfly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/brainview/internal/brain"
	"github.com/banshee-data/brainview/internal/figure"
	"github.com/banshee-data/brainview/internal/layout"
)

func dataset(t *testing.T, n, nt int, scale float64) *brain.Dataset {
	t.Helper()
	coords := make([]brain.Coord, n)
	vals := make([][]float64, n)
	times := make([]float64, nt)
	for k := range times {
		times[k] = float64(k) * 0.05
	}
	for i := range vals {
		coords[i] = brain.Coord{X: float64(i)}
		vals[i] = make([]float64, nt)
		for k := range vals[i] {
			vals[i][k] = float64(i+k+1) * scale
		}
	}
	d, err := brain.FromScalar(coords, times, vals)
	require.NoError(t, err)
	return d
}

func TestUnitFor(t *testing.T) {
	tests := []struct {
		maxAbs float64
		want   Unit
	}{
		{5e-11, Unit{1e12, " (pA)"}},
		{5e-8, Unit{1e9, " (nA)"}},
		{5e-4, Unit{1e6, " (µA)"}},
		{0.5, Unit{1, ""}},
		{1e-3, Unit{1, ""}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UnitFor(tt.maxAbs), "maxAbs=%g", tt.maxAbs)
	}
}

func TestSourceIndices(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, SourceIndices(3))
	assert.Equal(t, []int{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}, SourceIndices(200))
	assert.Len(t, SourceIndices(50), 10)
	assert.Empty(t, SourceIndices(0))
}

func TestRender_MeanMaxAndSources(t *testing.T) {
	d := dataset(t, 4, 3, 1)
	f := Render(d, 1, Options{Size: layout.ButterflySize(layout.Browser, 0)})

	require.Len(t, f.Traces, 6)
	mean := f.Traces[4]
	peak := f.Traces[5]
	assert.Equal(t, "Mean Activity", mean.Name)
	assert.Equal(t, "red", mean.Color)
	assert.Equal(t, []float64{2.5, 3.5, 4.5}, mean.Y)
	assert.Equal(t, "Max Activity", peak.Name)
	assert.Equal(t, "darkblue", peak.Color)
	assert.Equal(t, []float64{4, 5, 6}, peak.Y)

	src := f.Traces[0]
	require.NotNil(t, src.Source)
	assert.Equal(t, 0, *src.Source)
	assert.Equal(t, 0.6, src.Opacity)

	require.NotNil(t, f.TimeMarker)
	assert.Equal(t, 0.05, f.TimeMarker.X)
	assert.True(t, f.TimeMarker.Dash)

	assert.Equal(t, 350, f.Layout.Height)
	assert.InDelta(t, 1-0.5, f.Layout.YAxis.Min, 1e-12)
	assert.InDelta(t, 6+0.5, f.Layout.YAxis.Max, 1e-12)
	assert.Empty(t, f.Layout.Title)
}

func TestRender_ShowMaxOnlyChangesOnlyTraceCount(t *testing.T) {
	d := dataset(t, 30, 5, 1)
	full := Render(d, 0, Options{})
	maxOnly := Render(d, 0, Options{ShowMaxOnly: true})

	require.Len(t, maxOnly.Traces, 2)
	assert.Greater(t, len(full.Traces), len(maxOnly.Traces))

	n := len(full.Traces)
	assert.Equal(t, full.Traces[n-2], maxOnly.Traces[0])
	assert.Equal(t, full.Traces[n-1], maxOnly.Traces[1])
}

func TestRender_ScalesUnits(t *testing.T) {
	d := dataset(t, 2, 2, 1e-9)
	f := Render(d, 0, Options{ShowLabels: true})
	assert.Equal(t, "Activity (nA)", f.Layout.YAxis.Title)
	assert.Equal(t, "Time (s)", f.Layout.XAxis.Title)
	assert.InDelta(t, 3.0, f.Traces[len(f.Traces)-1].Y[1], 1e-9)
	assert.Contains(t, f.Layout.Title, "subset of 2 sources")
	assert.True(t, f.Layout.ShowLegend)

	// the dataset itself is untouched
	assert.InDelta(t, 3e-9, d.Magnitude[1][1], 1e-21)

	f = Render(d, 0, Options{ShowLabels: true, ShowMaxOnly: true})
	assert.Equal(t, "Source Activity Time Series - Mean & Max (2 sources)", f.Layout.Title)
}

func TestRender_ConstantDataMargin(t *testing.T) {
	d, err := brain.FromScalar([]brain.Coord{{}}, []float64{0, 1}, [][]float64{{2, 2}})
	require.NoError(t, err)
	f := Render(d, 5, Options{})
	assert.Equal(t, 1.0, f.Layout.YAxis.Min)
	assert.Equal(t, 3.0, f.Layout.YAxis.Max)
	assert.Nil(t, f.TimeMarker)
}

func TestRender_NoData(t *testing.T) {
	f := Render(nil, 0, Options{Size: layout.FigureSize{Height: 200}})
	assert.True(t, f.IsPlaceholder())
	assert.Equal(t, "No data loaded", f.Annotation)
	assert.Equal(t, figure.KindPlaceholder, f.Kind)
}

func TestNearestTimeIndex(t *testing.T) {
	times := []float64{0.0, 0.05, 0.10, 0.15, 0.20}
	assert.Equal(t, 3, NearestTimeIndex(times, 0.137))
	assert.Equal(t, 0, NearestTimeIndex(times, -4))
	assert.Equal(t, 4, NearestTimeIndex(times, 9))
	assert.Equal(t, 0, NearestTimeIndex(nil, 1))
}
