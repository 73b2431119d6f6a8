package brain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample_Defaults(t *testing.T) {
	d := Sample(SampleOptions{Vector: true, Seed: 42})

	require.Equal(t, 200, d.NumSources())
	require.Equal(t, 50, d.NumTimes())
	assert.True(t, d.IsVector())
	assert.Equal(t, 0.0, d.Times[0])
	assert.InDelta(t, 0.5, d.Times[49], 1e-12)

	for _, c := range d.Coords {
		assert.GreaterOrEqual(t, c.Z, -0.04-1e-12)
		assert.LessOrEqual(t, c.Z, 0.06+1e-12)
	}
}

func TestSample_Deterministic(t *testing.T) {
	a := Sample(DefaultSampleOptions())
	b := Sample(DefaultSampleOptions())
	assert.Equal(t, a.Coords, b.Coords)
	assert.Equal(t, a.Magnitude, b.Magnitude)

	c := Sample(SampleOptions{Sources: 200, Times: 50, Vector: true, Seed: 7})
	assert.NotEqual(t, a.Coords, c.Coords)
}

func TestSample_Scalar(t *testing.T) {
	d := Sample(SampleOptions{Sources: 50, Times: 20, Seed: 1})
	assert.False(t, d.IsVector())
	assert.Equal(t, 50, d.NumSources())
	assert.Equal(t, 20, d.NumTimes())
}

func TestSample_SingleTime(t *testing.T) {
	d := Sample(SampleOptions{Sources: 10, Times: 1, Seed: 1})
	assert.Equal(t, []float64{0}, d.Times)
}
