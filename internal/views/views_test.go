package views

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Table(t *testing.T) {
	t.Parallel()

	want := map[DisplayMode][]ViewID{
		"ortho": {Sagittal, Coronal, Axial},
		"x":     {Sagittal},
		"y":     {Coronal},
		"z":     {Axial},
		"xz":    {Sagittal, Axial},
		"yx":    {Coronal, Sagittal},
		"yz":    {Coronal, Axial},
		"l":     {LeftHemisphere},
		"r":     {RightHemisphere},
		"lr":    {LeftHemisphere, RightHemisphere},
		"lzr":   {LeftHemisphere, Axial, RightHemisphere},
		"lyr":   {LeftHemisphere, Coronal, RightHemisphere},
		"lzry":  {LeftHemisphere, Axial, RightHemisphere, Coronal},
		"lyrz":  {LeftHemisphere, Coronal, RightHemisphere, Axial},
	}
	require.Len(t, DisplayModes(), len(want))

	for mode, views := range want {
		got, err := Resolve(mode)
		require.NoError(t, err, mode)
		assert.Equal(t, views, got, mode)
		assert.NotEmpty(t, got)

		again, _ := Resolve(mode)
		assert.Equal(t, got, again, "order must be stable for %s", mode)
	}
}

func TestResolve_ReturnsCopy(t *testing.T) {
	got, err := Resolve(ModeLR)
	require.NoError(t, err)
	got[0] = Axial
	again, _ := Resolve(ModeLR)
	assert.Equal(t, LeftHemisphere, again[0])
}

func TestResolve_Unsupported(t *testing.T) {
	t.Parallel()

	for _, tok := range []string{"", "xyz", "LYR", "left", "zz"} {
		_, err := Resolve(DisplayMode(tok))
		var modeErr *UnsupportedModeError
		require.True(t, errors.As(err, &modeErr), "token %q", tok)
		assert.Equal(t, tok, modeErr.Mode)
	}
}

func TestParseDisplayMode(t *testing.T) {
	m, err := ParseDisplayMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeLYR, m)

	m, err = ParseDisplayMode("ortho")
	require.NoError(t, err)
	assert.Equal(t, ModeOrtho, m)

	_, err = ParseDisplayMode("bogus")
	assert.ErrorContains(t, err, `"bogus"`)
}

func TestViewID_Helpers(t *testing.T) {
	for _, v := range AllViews() {
		assert.True(t, v.Valid())
		assert.NotEmpty(t, v.Title())
	}
	assert.False(t, ViewID("top").Valid())
	assert.True(t, LeftHemisphere.Hemisphere())
	assert.False(t, Axial.Hemisphere())
	assert.True(t, ModeLYRZ.FourView())
	assert.False(t, ModeOrtho.FourView())
}
