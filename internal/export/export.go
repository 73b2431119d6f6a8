// Package export writes the current dashboard figures to image files: one
// butterfly plot and one image per brain view, all sharing a timestamp.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/banshee-data/brainview/internal/figure"
	"github.com/banshee-data/brainview/internal/fsutil"
	"github.com/banshee-data/brainview/internal/history"
	"github.com/banshee-data/brainview/internal/monitoring"
	"github.com/banshee-data/brainview/internal/projection"
	"github.com/banshee-data/brainview/internal/security"
	"github.com/banshee-data/brainview/internal/timeutil"
	"github.com/banshee-data/brainview/internal/viewer"
)

var logf = monitoring.For("export")

// DefaultDir is used when a request names no directory.
const DefaultDir = "images"

// TimestampLayout formats the shared file-name timestamp.
const TimestampLayout = "20060102_150405"

// Format is an image file format.
type Format string

const (
	PNG Format = "png"
	JPG Format = "jpg"
	SVG Format = "svg"
	PDF Format = "pdf"
)

// ParseFormat validates a format name. The empty string selects PNG.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return PNG, nil
	case "jpeg":
		return JPG, nil
	case PNG, JPG, SVG, PDF:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q (supported: png, jpg, svg, pdf)", s)
}

// Status summarises an export run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// ExportError records why one file could not be written.
type ExportError struct {
	File string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.File, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// MarshalJSON encodes the error as its message.
func (e *ExportError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Error())
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path  string       `json:"path"`
	Error *ExportError `json:"error,omitempty"`
}

// Result describes a finished export run.
type Result struct {
	RunID     string                `json:"run_id"`
	Dir       string                `json:"dir"`
	Format    Format                `json:"format"`
	TimeIndex int                   `json:"time_index"`
	Timestamp string                `json:"timestamp"`
	Status    Status                `json:"status"`
	Files     map[string]FileResult `json:"files"`
}

// Errors returns the per-file failures in file-name order.
func (r *Result) Errors() []error {
	names := make([]string, 0, len(r.Files))
	for name := range r.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	var errs []error
	for _, name := range names {
		if fr := r.Files[name]; fr.Error != nil {
			errs = append(errs, fr.Error)
		}
	}
	return errs
}

// Request selects what to export. A nil TimeIndex uses the session's time
// index.
type Request struct {
	Dir       string `json:"dir"`
	TimeIndex *int   `json:"time_index,omitempty"`
	Format    string `json:"format"`
}

// Recorder stores finished runs.
type Recorder interface {
	Insert(ctx context.Context, run *history.Run) error
}

// Config wires an Exporter. Zero values select the OS filesystem, the wall
// clock, the working directory as root and no history.
type Config struct {
	// Root confines export directories; relative request directories are
	// resolved against it.
	Root    string
	FS      fsutil.FileSystem
	Clock   timeutil.Clock
	History Recorder
}

// Exporter writes figure images.
type Exporter struct {
	root    string
	fs      fsutil.FileSystem
	clock   timeutil.Clock
	history Recorder
}

// New returns an Exporter for cfg.
func New(cfg Config) *Exporter {
	e := &Exporter{root: cfg.Root, fs: cfg.FS, clock: cfg.Clock, history: cfg.History}
	if e.fs == nil {
		e.fs = fsutil.OSFileSystem{}
	}
	if e.clock == nil {
		e.clock = timeutil.RealClock{}
	}
	if e.root == "" {
		// An unresolvable working directory leaves "." and every
		// request then fails validation.
		e.root = "."
		if wd, err := os.Getwd(); err == nil {
			e.root = wd
		}
	}
	return e
}

// Root returns the directory exports are confined to.
func (e *Exporter) Root() string { return e.root }

// Export renders and writes every figure for the selection. Invalid
// requests fail before anything is written; failures of individual files
// are reported in the result.
func (e *Exporter) Export(ctx context.Context, v *viewer.Viewer, s *viewer.Session, req Request) (*Result, error) {
	format, err := ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	dir, err := e.resolveDir(req.Dir)
	if err != nil {
		return nil, err
	}

	var sel viewer.Selection
	if s != nil {
		sel = s.Snapshot()
	}
	if req.TimeIndex != nil {
		sel.TimeIndex = *req.TimeIndex
	}
	if !v.Data().ValidTime(sel.TimeIndex) {
		return nil, fmt.Errorf("time index %d out of range [0, %d)", sel.TimeIndex, v.Data().NumTimes())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	res := &Result{
		RunID:     uuid.New().String(),
		Dir:       dir,
		Format:    format,
		TimeIndex: sel.TimeIndex,
		Timestamp: e.clock.Now().Format(TimestampLayout),
		Files:     make(map[string]FileResult),
	}

	figs, renderErrs := v.ViewFigures(sel)
	failed := make(map[string]error, len(renderErrs))
	for _, err := range renderErrs {
		var re *projection.RenderError
		if errors.As(err, &re) {
			failed[re.View] = err
		}
	}

	e.writeOne(ctx, res, "butterfly_plot", fmt.Sprintf("butterfly_plot_%s.%s", res.Timestamp, format), v.ButterflyFigure(sel), nil)
	for i, id := range v.Views() {
		key := string(id) + "_view"
		e.writeOne(ctx, res, key, fmt.Sprintf("%s_view_%s.%s", id, res.Timestamp, format), figs[i], failed[string(id)])
	}

	res.Status = summarise(res.Files)
	logf("%s: %d files to %s (%s)", res.Status, len(res.Files), dir, res.RunID)
	e.record(ctx, s, res)
	return res, nil
}

func (e *Exporter) resolveDir(dir string) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(e.root, dir)
	}
	if err := security.ValidatePathWithinDirectory(dir, e.root); err != nil {
		return "", err
	}
	return filepath.Clean(dir), nil
}

func (e *Exporter) writeOne(ctx context.Context, res *Result, key, name string, f *figure.Figure, renderErr error) {
	path := filepath.Join(res.Dir, security.SanitizeFilename(name))
	fr := FileResult{Path: path}
	if err := e.write(ctx, path, f, res.Format, renderErr); err != nil {
		fr.Error = &ExportError{File: filepath.Base(path), Err: err}
	}
	res.Files[key] = fr
}

func (e *Exporter) write(ctx context.Context, path string, f *figure.Figure, format Format, renderErr error) (err error) {
	if renderErr != nil {
		return renderErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	w, err := e.fs.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = e.fs.Remove(path)
		}
	}()
	return WriteImage(w, f, format)
}

func summarise(files map[string]FileResult) Status {
	ok := 0
	for _, fr := range files {
		if fr.Error == nil {
			ok++
		}
	}
	switch ok {
	case len(files):
		return StatusSuccess
	case 0:
		return StatusFailed
	}
	return StatusPartial
}

func (e *Exporter) record(ctx context.Context, s *viewer.Session, res *Result) {
	if e.history == nil {
		return
	}
	run := &history.Run{
		RunID:     res.RunID,
		Dir:       res.Dir,
		Format:    string(res.Format),
		TimeIndex: res.TimeIndex,
		Status:    string(res.Status),
		CreatedAt: e.clock.Now().UnixNano(),
	}
	if s != nil {
		run.SessionID = s.ID
	}
	for _, fr := range res.Files {
		run.Files = append(run.Files, history.File{Path: fr.Path, Error: errString(fr.Error)})
	}
	sort.Slice(run.Files, func(i, j int) bool { return run.Files[i].Path < run.Files[j].Path })
	if err := e.history.Insert(ctx, run); err != nil {
		logf("record run %s: %v", res.RunID, err)
	}
}

func errString(e *ExportError) string {
	if e == nil {
		return ""
	}
	return e.Error()
}
