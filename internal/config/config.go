package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/brainview/internal/figure"
	"github.com/banshee-data/brainview/internal/layout"
	"github.com/banshee-data/brainview/internal/projection"
	"github.com/banshee-data/brainview/internal/viewer"
	"github.com/banshee-data/brainview/internal/views"
)

// maxFileSize caps config files read from disk.
const maxFileSize = 1 * 1024 * 1024

// ViewerConfig is the on-disk configuration for the viewer and its server.
// Every field is optional; the Get* methods supply defaults for nil fields.
type ViewerConfig struct {
	// Rendering
	ColorScale      *string  `json:"color_scale,omitempty" yaml:"color_scale,omitempty"`
	VMin            *float64 `json:"vmin,omitempty" yaml:"vmin,omitempty"`
	VMax            *float64 `json:"vmax,omitempty" yaml:"vmax,omitempty"`
	ShowMaxOnly     *bool    `json:"show_max_only,omitempty" yaml:"show_max_only,omitempty"`
	ShowLabels      *bool    `json:"show_labels,omitempty" yaml:"show_labels,omitempty"`
	ArrowThreshold  *string  `json:"arrow_threshold,omitempty" yaml:"arrow_threshold,omitempty"` // "none", "auto" or a number
	ArrowScale      *float64 `json:"arrow_scale,omitempty" yaml:"arrow_scale,omitempty"`
	Layout          *string  `json:"layout,omitempty" yaml:"layout,omitempty"`
	Display         *string  `json:"display,omitempty" yaml:"display,omitempty"`
	Environment     *string  `json:"environment,omitempty" yaml:"environment,omitempty"`
	PlotHeight      *int     `json:"plot_height,omitempty" yaml:"plot_height,omitempty"`
	ButterflyHeight *int     `json:"butterfly_height,omitempty" yaml:"butterfly_height,omitempty"`
	Realtime        *bool    `json:"realtime,omitempty" yaml:"realtime,omitempty"`

	// Server
	Listen      *string `json:"listen,omitempty" yaml:"listen,omitempty"`
	ExportRoot  *string `json:"export_root,omitempty" yaml:"export_root,omitempty"`
	HistoryDB   *string `json:"history_db,omitempty" yaml:"history_db,omitempty"`
	SessionIdle *string `json:"session_idle,omitempty" yaml:"session_idle,omitempty"` // duration string like "30m"
}

// Load reads a ViewerConfig from a .json, .yaml or .yml file and validates
// it. Fields missing from the file stay nil.
func Load(path string) (*ViewerConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &ViewerConfig{}
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", strings.TrimPrefix(ext, "."), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every set field.
func (c *ViewerConfig) Validate() error {
	if c.ColorScale != nil {
		if _, err := figure.ParseColorScale(*c.ColorScale); err != nil {
			return fmt.Errorf("color_scale: %w", err)
		}
	}
	if c.VMin != nil && c.VMax != nil && *c.VMin > *c.VMax {
		return fmt.Errorf("vmin %g must not exceed vmax %g", *c.VMin, *c.VMax)
	}
	if c.ArrowThreshold != nil {
		if _, err := projection.ParseArrowThreshold(*c.ArrowThreshold); err != nil {
			return err
		}
	}
	if c.ArrowScale != nil && *c.ArrowScale <= 0 {
		return fmt.Errorf("arrow_scale must be positive, got %g", *c.ArrowScale)
	}
	if c.Layout != nil {
		if _, err := layout.ParseMode(*c.Layout); err != nil {
			return err
		}
	}
	if c.Display != nil {
		if _, err := views.ParseDisplayMode(*c.Display); err != nil {
			return err
		}
	}
	if c.Environment != nil {
		if _, err := layout.ParseEnvironment(*c.Environment); err != nil {
			return err
		}
	}
	if c.PlotHeight != nil && *c.PlotHeight < 0 {
		return fmt.Errorf("plot_height must be non-negative, got %d", *c.PlotHeight)
	}
	if c.ButterflyHeight != nil && *c.ButterflyHeight < 0 {
		return fmt.Errorf("butterfly_height must be non-negative, got %d", *c.ButterflyHeight)
	}
	if c.SessionIdle != nil && *c.SessionIdle != "" {
		if d, err := time.ParseDuration(*c.SessionIdle); err != nil {
			return fmt.Errorf("invalid session_idle '%s': %w", *c.SessionIdle, err)
		} else if d <= 0 {
			return fmt.Errorf("session_idle must be positive, got %s", d)
		}
	}
	return nil
}

// GetListen returns the server listen address or the default.
func (c *ViewerConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return ":8050"
	}
	return *c.Listen
}

// GetExportRoot returns the directory exports are confined to. Empty leaves
// the exporter on the working directory.
func (c *ViewerConfig) GetExportRoot() string {
	if c.ExportRoot == nil {
		return ""
	}
	return *c.ExportRoot
}

// GetHistoryDB returns the export history database path. Empty disables
// history.
func (c *ViewerConfig) GetHistoryDB() string {
	if c.HistoryDB == nil {
		return ""
	}
	return *c.HistoryDB
}

// GetSessionIdle returns how long an untouched session is kept.
func (c *ViewerConfig) GetSessionIdle() time.Duration {
	if c.SessionIdle == nil || *c.SessionIdle == "" {
		return 30 * time.Minute
	}
	d, err := time.ParseDuration(*c.SessionIdle)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// GetArrowScale returns the arrow scale or the default.
func (c *ViewerConfig) GetArrowScale() float64 {
	if c.ArrowScale == nil {
		return 1
	}
	return *c.ArrowScale
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func boolean(p *bool) bool {
	return p != nil && *p
}

func integer(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// ToOptions converts the rendering fields into viewer options. Unset fields
// take the viewer defaults.
func (c *ViewerConfig) ToOptions() (viewer.Options, error) {
	if err := c.Validate(); err != nil {
		return viewer.Options{}, err
	}
	opts := viewer.DefaultOptions()

	cs, err := figure.ParseColorScale(str(c.ColorScale))
	if err != nil {
		return opts, err
	}
	opts.ColorScale = cs
	opts.VMin, opts.VMax = c.VMin, c.VMax
	opts.ShowMaxOnly = boolean(c.ShowMaxOnly)
	opts.ShowLabels = boolean(c.ShowLabels)
	if opts.ArrowThreshold, err = projection.ParseArrowThreshold(str(c.ArrowThreshold)); err != nil {
		return opts, err
	}
	opts.ArrowScale = c.GetArrowScale()
	if opts.Layout, err = layout.ParseMode(str(c.Layout)); err != nil {
		return opts, err
	}
	if opts.Display, err = views.ParseDisplayMode(str(c.Display)); err != nil {
		return opts, err
	}
	if opts.Environment, err = layout.ParseEnvironment(str(c.Environment)); err != nil {
		return opts, err
	}
	opts.PlotHeight = integer(c.PlotHeight)
	opts.ButterflyHeight = integer(c.ButterflyHeight)
	opts.Realtime = boolean(c.Realtime)
	return opts, nil
}
