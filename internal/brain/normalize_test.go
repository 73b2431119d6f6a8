package brain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeCoords() []Coord {
	return []Coord{{X: -0.01}, {X: 0}, {X: 0.01}}
}

func TestNormalize_ScalarWithoutCases(t *testing.T) {
	d, err := FromScalar(threeCoords(), []float64{0, 0.1}, [][]float64{{1, 2}, {3, 4}, {-5, 6}})
	require.NoError(t, err)

	assert.Equal(t, 1, d.Components)
	assert.False(t, d.IsVector())
	assert.Equal(t, 3, d.NumSources())
	assert.Equal(t, 2, d.NumTimes())
	// scalar magnitude is the raw value, sign included
	assert.Equal(t, []float64{-5, 6}, d.Magnitude[2])
	assert.Equal(t, []float64{1, 3, -5}, d.MagnitudeAt(0))
}

func TestNormalize_VectorMagnitudeIsNorm(t *testing.T) {
	values := [][][]float64{
		{{3, 0}, {4, 0}, {0, 2}},
		{{1, 1}, {2, 2}, {2, 2}},
		{{0, 0}, {0, 0}, {0, 0}},
	}
	d, err := FromVector(threeCoords(), []float64{0, 1}, values)
	require.NoError(t, err)

	assert.True(t, d.IsVector())
	assert.InDelta(t, 5.0, d.Magnitude[0][0], 1e-12)
	assert.InDelta(t, 2.0, d.Magnitude[0][1], 1e-12)
	assert.InDelta(t, 3.0, d.Magnitude[1][0], 1e-12)
	assert.Equal(t, 0.0, d.Magnitude[2][1])

	vx, vy, vz := d.Vector(0, 0)
	assert.Equal(t, [3]float64{3, 4, 0}, [3]float64{vx, vy, vz})
}

func TestNormalize_AveragesCases(t *testing.T) {
	raw := RawTensor{
		Coords:   []Coord{{}, {X: 1}},
		Times:    []float64{0, 1, 2},
		HasCases: true,
		Values: [][][][]float64{
			{{{1, 2, 3}}, {{0, 0, 0}}},
			{{{3, 4, 5}}, {{2, 2, 2}}},
		},
	}
	d, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4}, d.Activity[0][0])
	assert.Equal(t, []float64{1, 1, 1}, d.Magnitude[1])
}

func TestNormalize_DoesNotAliasInput(t *testing.T) {
	coords := threeCoords()
	times := []float64{0, 1}
	d, err := FromScalar(coords, times, [][]float64{{1, 1}, {1, 1}, {1, 1}})
	require.NoError(t, err)
	coords[0].X = 99
	times[0] = -1
	assert.Equal(t, -0.01, d.Coords[0].X)
	assert.Equal(t, 0.0, d.Times[0])
}

func TestNormalize_ShapeErrors(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawTensor
		field string
	}{
		{
			name:  "empty",
			raw:   RawTensor{},
			field: "values",
		},
		{
			name: "coordinate count",
			raw: RawTensor{
				Coords: []Coord{{}},
				Times:  []float64{0},
				Values: [][][][]float64{{{{1}}, {{2}}}},
			},
			field: "coords",
		},
		{
			name: "time length",
			raw: RawTensor{
				Coords: []Coord{{}},
				Times:  []float64{0, 1, 2},
				Values: [][][][]float64{{{{1, 2}}}},
			},
			field: "times",
		},
		{
			name: "space not three",
			raw: RawTensor{
				Coords:   []Coord{{}},
				Times:    []float64{0},
				HasSpace: true,
				Values:   [][][][]float64{{{{1}, {2}}}},
			},
			field: "source 0 space",
		},
		{
			name: "multiple cases without flag",
			raw: RawTensor{
				Coords: []Coord{{}},
				Times:  []float64{0},
				Values: [][][][]float64{{{{1}}}, {{{2}}}},
			},
			field: "case",
		},
		{
			name: "ragged time",
			raw: RawTensor{
				Coords: []Coord{{}, {}},
				Times:  []float64{0, 1},
				Values: [][][][]float64{{{{1, 2}}, {{1}}}},
			},
			field: "source 1 time",
		},
		{
			name: "times not increasing",
			raw: RawTensor{
				Coords: []Coord{{}},
				Times:  []float64{0, 0},
				Values: [][][][]float64{{{{1, 2}}}},
			},
			field: "times",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			require.Error(t, err)
			var shapeErr *DataShapeError
			require.True(t, errors.As(err, &shapeErr), "got %T", err)
			assert.Equal(t, tt.field, shapeErr.Field)
		})
	}
}

func TestDataset_NilSafe(t *testing.T) {
	var d *Dataset
	assert.Equal(t, 0, d.NumSources())
	assert.Equal(t, 0, d.NumTimes())
	assert.True(t, d.Empty())
	assert.False(t, d.IsVector())
}

func TestDataset_ScalarVectorIsZero(t *testing.T) {
	d, err := FromScalar([]Coord{{}}, []float64{0}, [][]float64{{math.Pi}})
	require.NoError(t, err)
	vx, vy, vz := d.Vector(0, 0)
	assert.Zero(t, vx+vy+vz)
}
