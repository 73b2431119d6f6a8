package views

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/brainview/internal/brain"
)

func TestProject_Table(t *testing.T) {
	c := brain.Coord{X: 1, Y: 2, Z: 3}
	tests := []struct {
		view ViewID
		x, y float64
	}{
		{Axial, 1, 2},
		{Sagittal, 2, 3},
		{Coronal, 1, 3},
		{LeftHemisphere, -2, 3},
		{RightHemisphere, 2, 3},
	}
	for _, tt := range tests {
		x, y := Project(tt.view, c)
		assert.Equal(t, tt.x, x, tt.view)
		assert.Equal(t, tt.y, y, tt.view)

		u, w := ProjectVector(tt.view, 1, 2, 3)
		assert.Equal(t, tt.x, u, tt.view)
		assert.Equal(t, tt.y, w, tt.view)
	}

	x, _ := Project("bogus", c)
	assert.True(t, math.IsNaN(x))
}

func TestInHemisphere(t *testing.T) {
	mid := brain.Coord{X: 0}
	assert.True(t, InHemisphere(LeftHemisphere, mid))
	assert.True(t, InHemisphere(RightHemisphere, mid))
	assert.False(t, InHemisphere(LeftHemisphere, brain.Coord{X: 0.01}))
	assert.False(t, InHemisphere(RightHemisphere, brain.Coord{X: -0.01}))
	assert.True(t, InHemisphere(Axial, brain.Coord{X: -5}))
}

func TestComputeRanges_Padding(t *testing.T) {
	coords := []brain.Coord{{X: -1, Y: 0, Z: 0}, {X: 1, Y: 2, Z: 4}}
	r := ComputeRanges(coords, []ViewID{Axial, Sagittal})

	ax := r[Axial]
	assert.InDelta(t, -1.1, ax.X.Min, 1e-12)
	assert.InDelta(t, 1.1, ax.X.Max, 1e-12)
	assert.InDelta(t, -0.1, ax.Y.Min, 1e-12)
	assert.InDelta(t, 2.1, ax.Y.Max, 1e-12)

	sag := r[Sagittal]
	assert.InDelta(t, -0.2, sag.Y.Min, 1e-12)
	assert.InDelta(t, 4.2, sag.Y.Max, 1e-12)
	_, ok := r[Coronal]
	assert.False(t, ok)
}

func TestComputeRanges_DegenerateNeverEmpty(t *testing.T) {
	single := []brain.Coord{{X: 0.02, Y: -0.01, Z: 0.03}}
	for _, v := range AllViews() {
		b := ComputeRanges(single, []ViewID{v})[v]
		assert.Less(t, b.X.Min, b.X.Max, v)
		assert.Less(t, b.Y.Min, b.Y.Max, v)
		assert.InDelta(t, 0.02, b.X.Span(), 1e-12, v)
	}

	b := ComputeRanges(nil, []ViewID{Axial})[Axial]
	assert.Less(t, b.X.Min, b.X.Max)
}

func TestComputeRanges_HemispheresMatchInSize(t *testing.T) {
	coords := brain.Sample(brain.SampleOptions{Sources: 80, Times: 2, Seed: 3}).Coords
	r := ComputeRanges(coords, []ViewID{LeftHemisphere, RightHemisphere})
	left, right := r[LeftHemisphere], r[RightHemisphere]

	assert.InDelta(t, left.X.Span(), right.X.Span(), 1e-12)
	assert.Equal(t, left.Y, right.Y)
	// the left panel mirrors the right one
	assert.InDelta(t, left.X.Min, -right.X.Max, 1e-12)
}

func TestUnifySizes(t *testing.T) {
	boxes := map[ViewID]Box{
		Axial:   {X: Axis{0, 2}, Y: Axis{0, 1}},
		Coronal: {X: Axis{10, 11}, Y: Axis{-4, 0}},
	}
	u := UnifySizes(boxes)
	require.Len(t, u, 2)

	for v, b := range u {
		assert.InDelta(t, 4.0, b.X.Span(), 1e-12, v)
		assert.InDelta(t, 4.0, b.Y.Span(), 1e-12, v)
		assert.InDelta(t, boxes[v].X.Center(), b.X.Center(), 1e-12, v)
		assert.InDelta(t, boxes[v].Y.Center(), b.Y.Center(), 1e-12, v)
	}
}
