// Package views maps display-mode tokens to anatomical views and computes the
// fixed 2D axis range of every view.
package views

import (
	"fmt"
	"sort"
)

// ViewID names one anatomical projection plane.
type ViewID string

const (
	Sagittal        ViewID = "sagittal"
	Coronal         ViewID = "coronal"
	Axial           ViewID = "axial"
	LeftHemisphere  ViewID = "left_hemisphere"
	RightHemisphere ViewID = "right_hemisphere"
)

// AllViews lists every view in a stable order.
func AllViews() []ViewID {
	return []ViewID{Sagittal, Coronal, Axial, LeftHemisphere, RightHemisphere}
}

// Valid reports whether v is one of the known views.
func (v ViewID) Valid() bool {
	switch v {
	case Sagittal, Coronal, Axial, LeftHemisphere, RightHemisphere:
		return true
	}
	return false
}

// Hemisphere reports whether v shows a single hemisphere.
func (v ViewID) Hemisphere() bool {
	return v == LeftHemisphere || v == RightHemisphere
}

// Title is the human-readable panel name.
func (v ViewID) Title() string {
	switch v {
	case Sagittal:
		return "Sagittal"
	case Coronal:
		return "Coronal"
	case Axial:
		return "Axial"
	case LeftHemisphere:
		return "Left Hemisphere"
	case RightHemisphere:
		return "Right Hemisphere"
	}
	return string(v)
}

// DisplayMode is a token selecting an ordered set of views.
type DisplayMode string

const (
	ModeX     DisplayMode = "x"
	ModeY     DisplayMode = "y"
	ModeZ     DisplayMode = "z"
	ModeXZ    DisplayMode = "xz"
	ModeYX    DisplayMode = "yx"
	ModeYZ    DisplayMode = "yz"
	ModeL     DisplayMode = "l"
	ModeR     DisplayMode = "r"
	ModeLR    DisplayMode = "lr"
	ModeLZR   DisplayMode = "lzr"
	ModeLYR   DisplayMode = "lyr"
	ModeOrtho DisplayMode = "ortho"
	ModeLZRY  DisplayMode = "lzry"
	ModeLYRZ  DisplayMode = "lyrz"

	// DefaultDisplayMode shows both hemispheres around a coronal view.
	DefaultDisplayMode = ModeLYR
)

var modeViews = map[DisplayMode][]ViewID{
	ModeOrtho: {Sagittal, Coronal, Axial},
	ModeX:     {Sagittal},
	ModeY:     {Coronal},
	ModeZ:     {Axial},
	ModeXZ:    {Sagittal, Axial},
	ModeYX:    {Coronal, Sagittal},
	ModeYZ:    {Coronal, Axial},
	ModeL:     {LeftHemisphere},
	ModeR:     {RightHemisphere},
	ModeLR:    {LeftHemisphere, RightHemisphere},
	ModeLZR:   {LeftHemisphere, Axial, RightHemisphere},
	ModeLYR:   {LeftHemisphere, Coronal, RightHemisphere},
	ModeLZRY:  {LeftHemisphere, Axial, RightHemisphere, Coronal},
	ModeLYRZ:  {LeftHemisphere, Coronal, RightHemisphere, Axial},
}

// UnsupportedModeError reports an unknown display-mode token.
type UnsupportedModeError struct {
	Mode string
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("unsupported display mode %q (supported: %v)", e.Mode, DisplayModes())
}

// DisplayModes returns every supported token, sorted.
func DisplayModes() []DisplayMode {
	out := make([]DisplayMode, 0, len(modeViews))
	for m := range modeViews {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseDisplayMode validates a raw token. The empty string selects the default.
func ParseDisplayMode(s string) (DisplayMode, error) {
	if s == "" {
		return DefaultDisplayMode, nil
	}
	m := DisplayMode(s)
	if _, ok := modeViews[m]; !ok {
		return "", &UnsupportedModeError{Mode: s}
	}
	return m, nil
}

// FourView reports whether the mode shows four panels.
func (m DisplayMode) FourView() bool {
	return m == ModeLZRY || m == ModeLYRZ
}

// Resolve returns the ordered views for mode. The returned slice is a copy.
func Resolve(mode DisplayMode) ([]ViewID, error) {
	v, ok := modeViews[mode]
	if !ok {
		return nil, &UnsupportedModeError{Mode: string(mode)}
	}
	return append([]ViewID(nil), v...), nil
}
