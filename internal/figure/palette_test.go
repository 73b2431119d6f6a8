package figure

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorScale_Named(t *testing.T) {
	cols, err := ColorScale{}.Colors()
	require.NoError(t, err)
	assert.Len(t, cols, paletteSize)

	hex, err := ColorScale{Name: "Viridis"}.Hex()
	require.NoError(t, err)
	assert.Equal(t, viridis, hex)

	_, err = ColorScale{Name: "NoSuchScale"}.Colors()
	assert.ErrorContains(t, err, "NoSuchScale")
}

func TestParseColorScale(t *testing.T) {
	cs, err := ParseColorScale("")
	require.NoError(t, err)
	assert.Equal(t, DefaultColorScale, cs.Name)

	cs, err = ParseColorScale("white, #f00 ,#0000ff")
	require.NoError(t, err)
	hex, err := cs.Hex()
	require.NoError(t, err)
	assert.Equal(t, []string{"#ffffff", "#ff0000", "#0000ff"}, hex)

	_, err = ParseColorScale("#zzzzzz,#000000")
	assert.Error(t, err)

	_, err = ColorScale{Stops: []string{"red"}}.Colors()
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("darkblue")
	require.NoError(t, err)
	assert.Equal(t, "#00008b", Hex(c))

	c, err = ParseColor("#0A0b0C")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{10, 11, 12, 255}, c)

	_, err = ParseColor("#12345")
	assert.Error(t, err)
	_, err = ParseColor("notacolor")
	assert.Error(t, err)
}

func TestInterpolate(t *testing.T) {
	cols := []color.Color{color.RGBA{0, 0, 0, 255}, color.RGBA{254, 254, 254, 255}}
	assert.Equal(t, cols[0], Interpolate(cols, -1))
	assert.Equal(t, cols[1], Interpolate(cols, 2))
	assert.Equal(t, "#7f7f7f", Hex(Interpolate(cols, 0.5)))
	assert.Equal(t, color.Black, Interpolate(nil, 0.5))
}

func TestPlaceholder(t *testing.T) {
	f := Placeholder("axial", "Error: axial", 200)
	assert.True(t, f.IsPlaceholder())
	assert.Equal(t, "Error: axial", f.Annotation)
	assert.Equal(t, 200, f.Layout.Height)
	assert.Zero(t, f.ArrowCount())

	var nilFig *Figure
	assert.False(t, nilFig.IsPlaceholder())
}
