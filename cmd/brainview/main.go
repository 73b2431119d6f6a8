package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"

	"github.com/banshee-data/brainview/internal/brain"
	"github.com/banshee-data/brainview/internal/config"
	"github.com/banshee-data/brainview/internal/export"
	"github.com/banshee-data/brainview/internal/history"
	"github.com/banshee-data/brainview/internal/timeutil"
	"github.com/banshee-data/brainview/internal/version"
	"github.com/banshee-data/brainview/internal/viewer"
	"github.com/banshee-data/brainview/internal/web"
)

var (
	listen         = flag.String("listen", ":8050", "Listen address")
	configPath     = flag.String("config", "", "Viewer config file (.json, .yaml or .yml)")
	dataPath       = flag.String("data", "", "JSON dataset file (default: synthetic sample)")
	sampleSources  = flag.Int("sample-sources", 200, "Number of sources in the synthetic sample")
	sampleTimes    = flag.Int("sample-times", 50, "Number of time points in the synthetic sample")
	sampleScalar   = flag.Bool("sample-scalar", false, "Generate scalar instead of vector sample data")
	display        = flag.String("display", "lyr", "Display mode: x, y, z, xz, yx, yz, l, r, lr, lzr, lyr, ortho, lzry, lyrz")
	layoutMode     = flag.String("layout", "vertical", "Layout: vertical or horizontal")
	environment    = flag.String("env", "browser", "Environment: browser or embedded")
	colorScale     = flag.String("color-scale", "", "Color scale name or comma-separated colors")
	vmin           = flag.String("vmin", "", "Fixed lower bound of the color range")
	vmax           = flag.String("vmax", "", "Fixed upper bound of the color range")
	arrowThreshold = flag.String("arrow-threshold", "none", "Arrow threshold: none, auto or a magnitude")
	arrowScale     = flag.Float64("arrow-scale", 1, "Arrow length multiplier")
	showMaxOnly    = flag.Bool("show-max-only", false, "Only show the mean and max traces in the butterfly plot")
	showLabels     = flag.Bool("show-labels", false, "Show axis labels on the brain views")
	realtime       = flag.Bool("realtime", false, "Start sessions with hover tracking enabled")
	exportRoot     = flag.String("export-root", "", "Confine export directories to this root (default: working directory)")
	historyDB      = flag.String("history-db", "", "SQLite file recording export runs (disabled when empty)")
	exportOnly     = flag.String("export-only", "", "Export images to this directory and exit")
	exportFormat   = flag.String("export-format", "png", "Format used with -export-only: png, jpg, svg or pdf")
	showVersion    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get())
		return
	}

	cfg := &config.ViewerConfig{}
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	if err := applyFlags(cfg, setFlags()); err != nil {
		log.Fatalf("invalid flags: %v", err)
	}
	opts, err := cfg.ToOptions()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	data, err := loadData()
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	v, err := viewer.New(data, opts)
	if err != nil {
		log.Fatalf("failed to build viewer: %v", err)
	}
	log.Printf("loaded %d sources x %d time points (%d components)", data.NumSources(), data.NumTimes(), data.Components)

	var store *history.Store
	if path := cfg.GetHistoryDB(); path != "" {
		if store, err = history.Open(path); err != nil {
			log.Fatalf("failed to open export history: %v", err)
		}
		defer store.Close()
	}

	clock := timeutil.RealClock{}
	exCfg := export.Config{Root: cfg.GetExportRoot(), Clock: clock}
	exportDir := *exportOnly
	if exCfg.Root == "" && exportDir != "" {
		if exportDir, err = filepath.Abs(exportDir); err != nil {
			log.Fatalf("invalid export directory: %v", err)
		}
		if err := os.MkdirAll(exportDir, 0o755); err != nil {
			log.Fatalf("failed to create export directory: %v", err)
		}
		exCfg.Root = exportDir
	}
	if store != nil {
		exCfg.History = store
	}
	exporter := export.New(exCfg)
	log.Printf("exports confined to %s", exporter.Root())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *exportOnly != "" {
		res, err := exporter.Export(ctx, v, v.NewSession(), export.Request{Dir: exportDir, Format: *exportFormat})
		if err != nil {
			log.Fatalf("export failed: %v", err)
		}
		for _, e := range res.Errors() {
			log.Printf("%v", e)
		}
		log.Printf("export %s: %d files in %s", res.Status, len(res.Files), res.Dir)
		if res.Status == export.StatusFailed {
			os.Exit(1)
		}
		return
	}

	wsCfg := web.WebServerConfig{
		Address:  cfg.GetListen(),
		Viewer:   v,
		Sessions: viewer.NewStore(v, clock, cfg.GetSessionIdle()),
		Exporter: exporter,
		Clock:    clock,
	}
	if store != nil {
		wsCfg.History = store
	}
	server := web.NewWebServer(wsCfg)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(ctx); err != nil {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	wg.Wait()
	log.Printf("brainview stopped")
}

func loadData() (*brain.Dataset, error) {
	if *dataPath != "" {
		return brain.LoadFile(*dataPath)
	}
	return brain.Sample(brain.SampleOptions{
		Sources: *sampleSources,
		Times:   *sampleTimes,
		Vector:  !*sampleScalar,
		Seed:    brain.DefaultSampleOptions().Seed,
	}), nil
}

// setFlags returns the names of the flags given on the command line.
func setFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyFlags overrides config values with explicitly set flags. Flags left at
// their defaults only fill fields the config file did not set.
func applyFlags(cfg *config.ViewerConfig, set map[string]bool) error {
	str := func(name string, dst **string, val string) {
		if set[name] || *dst == nil {
			v := val
			*dst = &v
		}
	}
	boolean := func(name string, dst **bool, val bool) {
		if set[name] || *dst == nil {
			v := val
			*dst = &v
		}
	}
	bound := func(name string, dst **float64, raw string) error {
		if !set[name] {
			return nil
		}
		if raw == "" {
			*dst = nil
			return nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("-%s: %w", name, err)
		}
		*dst = &f
		return nil
	}

	str("listen", &cfg.Listen, *listen)
	str("display", &cfg.Display, *display)
	str("layout", &cfg.Layout, *layoutMode)
	str("env", &cfg.Environment, *environment)
	str("arrow-threshold", &cfg.ArrowThreshold, *arrowThreshold)
	str("export-root", &cfg.ExportRoot, *exportRoot)
	str("history-db", &cfg.HistoryDB, *historyDB)
	if set["color-scale"] {
		str("color-scale", &cfg.ColorScale, *colorScale)
	}
	boolean("show-max-only", &cfg.ShowMaxOnly, *showMaxOnly)
	boolean("show-labels", &cfg.ShowLabels, *showLabels)
	boolean("realtime", &cfg.Realtime, *realtime)
	if set["arrow-scale"] || cfg.ArrowScale == nil {
		s := *arrowScale
		cfg.ArrowScale = &s
	}
	if err := bound("vmin", &cfg.VMin, *vmin); err != nil {
		return err
	}
	if err := bound("vmax", &cfg.VMax, *vmax); err != nil {
		return err
	}
	return cfg.Validate()
}
