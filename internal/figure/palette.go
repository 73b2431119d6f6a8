package figure

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
)

// DefaultColorScale is the sequential scale used when none is configured.
const DefaultColorScale = "YlOrRd"

// paletteSize is the number of stops taken from named Brewer scales.
const paletteSize = 9

var viridis = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// ColorScale is either a named scale (any sequential or diverging Brewer
// scale, or "Viridis") or an explicit list of colour stops.
type ColorScale struct {
	Name  string   `json:"name,omitempty"`
	Stops []string `json:"stops,omitempty"`
}

// ParseColorScale accepts a scale name or a comma-separated list of colours.
func ParseColorScale(s string) (ColorScale, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ColorScale{Name: DefaultColorScale}, nil
	}
	if !strings.Contains(s, ",") {
		cs := ColorScale{Name: s}
		_, err := cs.Colors()
		return cs, err
	}
	var stops []string
	for _, p := range strings.Split(s, ",") {
		stops = append(stops, strings.TrimSpace(p))
	}
	cs := ColorScale{Stops: stops}
	_, err := cs.Colors()
	return cs, err
}

// Colors resolves the scale into low-to-high colour stops.
func (c ColorScale) Colors() ([]color.Color, error) {
	if len(c.Stops) > 0 {
		if len(c.Stops) < 2 {
			return nil, fmt.Errorf("color scale needs at least 2 stops, got %d", len(c.Stops))
		}
		out := make([]color.Color, len(c.Stops))
		for i, s := range c.Stops {
			col, err := ParseColor(s)
			if err != nil {
				return nil, err
			}
			out[i] = col
		}
		return out, nil
	}

	name := c.Name
	if name == "" {
		name = DefaultColorScale
	}
	if strings.EqualFold(name, "viridis") {
		return ColorScale{Stops: viridis}.Colors()
	}
	p, err := brewer.GetPalette(brewer.TypeAny, name, paletteSize)
	if err != nil {
		return nil, fmt.Errorf("unknown color scale %q: %w", name, err)
	}
	return p.Colors(), nil
}

// Palette adapts the scale to a plot palette.
func (c ColorScale) Palette() (palette.Palette, error) {
	cols, err := c.Colors()
	if err != nil {
		return nil, err
	}
	return stops(cols), nil
}

// Hex returns the scale as "#rrggbb" strings.
func (c ColorScale) Hex() ([]string, error) {
	cols, err := c.Colors()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = Hex(col)
	}
	return out, nil
}

type stops []color.Color

func (s stops) Colors() []color.Color { return s }

// ParseColor accepts "#rgb", "#rrggbb" or an SVG colour name.
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return nil, fmt.Errorf("unknown color %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Hex formats c as "#rrggbb".
func Hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// Interpolate picks the colour at fraction f in [0, 1] along cols.
func Interpolate(cols []color.Color, f float64) color.Color {
	if len(cols) == 0 {
		return color.Black
	}
	if f <= 0 {
		return cols[0]
	}
	if f >= 1 {
		return cols[len(cols)-1]
	}
	pos := f * float64(len(cols)-1)
	i := int(pos)
	frac := pos - float64(i)
	r0, g0, b0, a0 := cols[i].RGBA()
	r1, g1, b1, a1 := cols[i+1].RGBA()
	lerp := func(a, b uint32) uint8 {
		return uint8((float64(a)*(1-frac) + float64(b)*frac) / 257)
	}
	return color.RGBA{R: lerp(r0, r1), G: lerp(g0, g1), B: lerp(b0, b1), A: lerp(a0, a1)}
}
