// Package web serves the interactive dashboard and its JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/banshee-data/brainview/internal/export"
	"github.com/banshee-data/brainview/internal/history"
	"github.com/banshee-data/brainview/internal/monitoring"
	"github.com/banshee-data/brainview/internal/timeutil"
	"github.com/banshee-data/brainview/internal/viewer"
)

var logf = monitoring.For("web")

const (
	// SessionCookie carries the session id between requests.
	SessionCookie = "brainview_session"

	defaultPruneInterval = time.Minute
	shutdownTimeout      = time.Second
)

// HistoryStore lists and records export runs.
type HistoryStore interface {
	export.Recorder
	Recent(ctx context.Context, limit int) ([]*history.Run, error)
}

// adminAttacher is implemented by stores that expose debug routes.
type adminAttacher interface {
	AttachAdminRoutes(mux *http.ServeMux) error
}

// WebServer handles the HTTP interface of the dashboard.
type WebServer struct {
	address       string
	viewer        *viewer.Viewer
	sessions      *viewer.Store
	exporter      *export.Exporter
	history       HistoryStore
	templates     TemplateProvider
	clock         timeutil.Clock
	pruneInterval time.Duration
	server        *http.Server
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address string
	Viewer  *viewer.Viewer
	// Sessions defaults to a store that never expires sessions.
	Sessions *viewer.Store
	// Exporter defaults to one confined to the working directory that
	// records runs in History.
	Exporter *export.Exporter
	// History is optional; without it /api/exports reports 404.
	History       HistoryStore
	Templates     TemplateProvider
	Clock         timeutil.Clock
	PruneInterval time.Duration
}

// NewWebServer creates a new web server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address:       config.Address,
		viewer:        config.Viewer,
		sessions:      config.Sessions,
		exporter:      config.Exporter,
		history:       config.History,
		templates:     config.Templates,
		clock:         config.Clock,
		pruneInterval: config.PruneInterval,
	}
	if ws.clock == nil {
		ws.clock = timeutil.RealClock{}
	}
	if ws.sessions == nil {
		ws.sessions = viewer.NewStore(ws.viewer, ws.clock, 0)
	}
	if ws.exporter == nil {
		cfg := export.Config{Clock: ws.clock}
		if ws.history != nil {
			cfg.History = ws.history
		}
		ws.exporter = export.New(cfg)
	}
	if ws.templates == nil {
		ws.templates = NewEmbeddedTemplateProvider(templateFS, "templates")
	}
	if ws.pruneInterval <= 0 {
		ws.pruneInterval = defaultPruneInterval
	}

	ws.server = &http.Server{
		Addr:              ws.address,
		Handler:           ws.setupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return ws
}

// Handler returns the root handler.
func (ws *WebServer) Handler() http.Handler {
	return ws.server.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully. Idle
// sessions are pruned while the server runs.
func (ws *WebServer) Start(ctx context.Context) error {
	go ws.sessions.Run(ctx.Done(), ws.pruneInterval)

	errCh := make(chan error, 1)
	go func() {
		logf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		logf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			logf("HTTP server force close error: %v", err)
		}
	}

	logf("HTTP server routine stopped")
	return nil
}

// Close shuts down the web server immediately.
func (ws *WebServer) Close() error {
	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/", ws.handleDashboard)

	mux.HandleFunc("/api/frame", ws.handleFrame)
	mux.HandleFunc("/api/views", ws.handleViews)
	mux.HandleFunc("/api/butterfly", ws.handleButterfly)
	mux.HandleFunc("/api/info", ws.handleInfo)
	mux.HandleFunc("/api/click", ws.handleClick)
	mux.HandleFunc("/api/hover", ws.handleHover)
	mux.HandleFunc("/api/realtime", ws.handleRealtime)
	mux.HandleFunc("/api/time", ws.handleSelectTime)
	mux.HandleFunc("/api/export", ws.handleExport)
	mux.HandleFunc("/api/exports", ws.handleExports)

	mux.HandleFunc("/chart/view/{view}", ws.handleChartView)
	mux.HandleFunc("/chart/butterfly", ws.handleChartButterfly)
	mux.HandleFunc("/chart/colorbar", ws.handleChartColorbar)

	if a, ok := ws.history.(adminAttacher); ok {
		if err := a.AttachAdminRoutes(mux); err != nil {
			logf("admin routes unavailable: %v", err)
		}
	}
	return mux
}
