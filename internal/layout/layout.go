// Package layout holds the dashboard sizing arithmetic: panel widths,
// heights and margins as a function of arrangement, view count and host
// environment.
package layout

import (
	"fmt"

	"github.com/banshee-data/brainview/internal/figure"
	"github.com/banshee-data/brainview/internal/views"
)

// Mode arranges the butterfly plot relative to the view panels.
type Mode string

const (
	Vertical   Mode = "vertical"
	Horizontal Mode = "horizontal"
)

// Environment selects compact (embedded in a notebook frame) or standalone
// browser sizing.
type Environment string

const (
	Embedded Environment = "embedded"
	Browser  Environment = "browser"
)

// ParseMode validates a layout token; empty selects Vertical.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", Vertical:
		return Vertical, nil
	case Horizontal:
		return Horizontal, nil
	}
	return "", fmt.Errorf("unsupported layout mode %q (want vertical or horizontal)", s)
}

// ParseEnvironment validates an environment token; empty selects Browser.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case "", Browser:
		return Browser, nil
	case Embedded:
		return Embedded, nil
	}
	return "", fmt.Errorf("unsupported environment %q (want embedded or browser)", s)
}

// Spec is the structural layout of the dashboard.
type Spec struct {
	Mode            Mode        `json:"mode"`
	Environment     Environment `json:"environment"`
	ViewCount       int         `json:"view_count"`
	ButterflyWidth  string      `json:"butterfly_width"`
	BrainWidth      string      `json:"brain_width"`
	BrainMargin     string      `json:"brain_margin"`
	PlotHeight      int         `json:"plot_height"`
	ButterflyHeight int         `json:"butterfly_height"`
	Padding         int         `json:"padding"`
	// SeparateColorbar is set when the colour bar needs its own figure
	// because no view panel sits at the end of a column.
	SeparateColorbar bool `json:"separate_colorbar"`
}

// Compose returns the layout for the given arrangement. View counts outside
// 1..4 are clamped.
func Compose(mode Mode, viewCount int, env Environment, display views.DisplayMode) Spec {
	viewCount = max(1, min(4, viewCount))
	fourView := display.FourView() && viewCount == 4
	embedded := env == Embedded

	s := Spec{Mode: mode, Environment: env, ViewCount: viewCount}
	switch mode {
	case Horizontal:
		s.ButterflyWidth = "30%"
		if fourView {
			s.ButterflyWidth = "25%"
		}
		s.BrainWidth = fmt.Sprintf("%.2f%%", 70/float64(viewCount))
		s.BrainMargin = "0px"
		s.PlotHeight = pick(embedded, 200, 350)
		s.ButterflyHeight = pick(embedded, 200, 350)
		s.Padding = pick(embedded, 5, 10)
		s.SeparateColorbar = true
	default:
		s.Mode = Vertical
		s.ButterflyWidth = "100%"
		s.BrainWidth = verticalBrainWidth(viewCount, embedded)
		s.BrainMargin = "0.5%"
		if embedded && !fourView {
			s.BrainMargin = "1.5%"
		}
		s.PlotHeight = pick(embedded, 250, 450)
		s.ButterflyHeight = pick(embedded, 300, 400)
		s.Padding = pick(embedded, 2, 5)
	}
	return s
}

func verticalBrainWidth(n int, embedded bool) string {
	switch n {
	case 1:
		return "98%"
	case 2:
		return "48%"
	case 3:
		if embedded {
			return "30%"
		}
		return "32%"
	}
	return "24%"
}

func pick(embedded bool, compact, standalone int) int {
	if embedded {
		return compact
	}
	return standalone
}

// EmbedHeight estimates the host frame height needed to show the whole
// dashboard without scrolling.
func EmbedHeight(s Spec) int {
	var h int
	if s.Mode == Horizontal {
		h = 120 + max(s.ButterflyHeight, s.PlotHeight) + 10
	} else {
		h = s.ButterflyHeight + s.PlotHeight + 102
	}
	return max(h, 200)
}

// FigureSize is the pixel height and margin of one figure.
type FigureSize struct {
	Height int
	Margin figure.Margin
}

// ProjectionSize returns the per-view figure size; a positive override
// replaces the environment default height.
func ProjectionSize(env Environment, override int) FigureSize {
	fs := FigureSize{Height: 450, Margin: figure.Margin{L: 10, R: 10, T: 10, B: 10}}
	if env == Embedded {
		fs = FigureSize{Height: 200}
	}
	if override > 0 {
		fs.Height = override
	}
	return fs
}

// ButterflySize returns the time-series figure size.
func ButterflySize(env Environment, override int) FigureSize {
	fs := FigureSize{Height: 350, Margin: figure.Margin{L: 40, R: 20, T: 10, B: 40}}
	if env == Embedded {
		fs = FigureSize{Height: 200}
	}
	if override > 0 {
		fs.Height = override
	}
	return fs
}

// ColorbarHeight is the height of the standalone colour bar figure.
const ColorbarHeight = 80
