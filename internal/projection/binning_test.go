package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxisBins_Edges(t *testing.T) {
	b := newAxisBins([]float64{3, 0, 1, 1, 3})
	assert.Equal(t, []float64{0, 1, 3}, b.values)
	assert.Equal(t, []float64{-0.5, 0.5, 2, 3.5}, b.edges)
	assert.Equal(t, []float64{0, 1.25, 2.75}, b.centers())

	for i, v := range b.values {
		assert.Equal(t, i, b.index(v))
		assert.Greater(t, v, b.edges[i])
		assert.Less(t, v, b.edges[i+1])
	}
}

func TestAxisBins_SingleValue(t *testing.T) {
	b := newAxisBins([]float64{2, 2})
	require.Len(t, b.edges, 2)
	assert.InDelta(t, 1.999, b.edges[0], 1e-12)
	assert.InDelta(t, 2.001, b.edges[1], 1e-12)
}

func TestBinMax_TakesMaxNotSumOrMean(t *testing.T) {
	xs := []float64{0, 0, 0.01}
	ys := []float64{0, 0, 0}
	vals := []float64{2, 5, 1}

	h := binMax(xs, ys, vals)
	require.Len(t, h.Grid, 1)
	require.Len(t, h.Grid[0], 2)
	assert.Equal(t, 5.0, h.Grid[0][0])
	assert.Equal(t, 1.0, h.Grid[0][1])

	require.Len(t, h.Cells, 2)
	assert.Equal(t, 5.0, h.Cells[0].Value)
	assert.Equal(t, 1, h.Cells[0].Source)
	assert.InDelta(t, 0.01, h.Cells[0].W, 1e-12)
}

func TestBinMax_EmptyBinsAreNaN(t *testing.T) {
	// two sources on a diagonal leave the off-diagonal bins empty
	h := binMax([]float64{0, 1}, []float64{0, 1}, []float64{3, 4})
	require.Len(t, h.Grid, 2)
	assert.True(t, math.IsNaN(h.Grid[0][1]))
	assert.True(t, math.IsNaN(h.Grid[1][0]))
	assert.Equal(t, 3.0, h.Grid[0][0])
	assert.Equal(t, 4.0, h.Grid[1][1])
	assert.Len(t, h.Cells, 2)
}

func TestBinMax_NegativeValuesStillWin(t *testing.T) {
	h := binMax([]float64{0, 0}, []float64{0, 0}, []float64{-3, -1})
	assert.Equal(t, -1.0, h.Grid[0][0])
	assert.Equal(t, 1, h.Cells[0].Source)
}

func TestBinMax_SnapsPositions(t *testing.T) {
	h := binMax([]float64{0.1, 0.1000002}, []float64{0, 0}, []float64{1, 4})
	require.Len(t, h.Cells, 1)
	assert.Equal(t, 4.0, h.Cells[0].Value)
	assert.Equal(t, 1, h.Cells[0].Source)
}
