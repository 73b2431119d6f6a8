package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/brainview/internal/chart"
	"github.com/banshee-data/brainview/internal/export"
	"github.com/banshee-data/brainview/internal/figure"
	"github.com/banshee-data/brainview/internal/history"
	"github.com/banshee-data/brainview/internal/httputil"
	"github.com/banshee-data/brainview/internal/layout"
	"github.com/banshee-data/brainview/internal/version"
	"github.com/banshee-data/brainview/internal/viewer"
	"github.com/banshee-data/brainview/internal/views"
)

// session resolves the caller's session from the "session" query parameter
// or the session cookie, creating one when neither names a live session.
func (ws *WebServer) session(w http.ResponseWriter, r *http.Request) *viewer.Session {
	id := r.URL.Query().Get("session")
	if id == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}
	}
	s := ws.sessions.Acquire(id)
	if s.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		httputil.MethodNotAllowed(w)
		return false
	}
	return true
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":    "ok",
		"service":   "brainview",
		"version":   version.Get(),
		"sessions":  ws.sessions.Len(),
		"timestamp": ws.clock.Now().UTC().Format(time.RFC3339),
	})
}

type dashboardData struct {
	Title        string
	SessionID    string
	AssetsHost   string
	ClickHandler string
	Layout       layout.Spec
	Views        []views.ViewID
	Version      string
}

func (ws *WebServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s := ws.session(w, r)
	data := dashboardData{
		Title:        "Brain activity",
		SessionID:    s.ID,
		AssetsHost:   chart.AssetsHost,
		ClickHandler: chart.ClickHandler,
		Layout:       ws.viewer.Layout(),
		Views:        ws.viewer.Views(),
		Version:      version.Version,
	}
	var buf bytes.Buffer
	if err := ws.templates.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		http.Error(w, "Error executing template: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// viewPanel is one rendered view as an echarts option.
type viewPanel struct {
	View   string          `json:"view"`
	Height int             `json:"height"`
	Option json.RawMessage `json:"option"`
}

// frameResponse is a whole dashboard redraw.
type frameResponse struct {
	SessionID string           `json:"session_id"`
	Selection viewer.Selection `json:"selection"`
	Time      float64          `json:"time"`
	Views     []viewPanel      `json:"views"`
	Butterfly json.RawMessage  `json:"butterfly"`
	Colorbar  json.RawMessage  `json:"colorbar,omitempty"`
	Info      []string         `json:"info"`
	InfoText  string           `json:"info_text"`
	Errors    []string         `json:"errors,omitempty"`
}

// option encodes f, degrading to a placeholder when the chart cannot be
// built.
func option(f *figure.Figure) json.RawMessage {
	raw, err := chart.MarshalOption(f)
	if err == nil {
		return raw
	}
	logf("chart %s/%s: %v", f.Kind, f.View, err)
	raw, err = chart.MarshalOption(figure.Placeholder(f.View, "Error: "+f.View, f.Layout.Height))
	if err != nil {
		return json.RawMessage("null")
	}
	return raw
}

func (ws *WebServer) frame(s *viewer.Session) frameResponse {
	fr := ws.viewer.Render(s)
	out := frameResponse{
		SessionID: s.ID,
		Selection: fr.Selection,
		Butterfly: option(fr.Butterfly),
		Info:      fr.Info,
		InfoText:  viewer.InfoText(fr.Info),
	}
	if d := ws.viewer.Data(); d.ValidTime(fr.Selection.TimeIndex) {
		out.Time = d.Times[fr.Selection.TimeIndex]
	}
	for _, f := range fr.Views {
		out.Views = append(out.Views, viewPanel{View: f.View, Height: f.Layout.Height, Option: option(f)})
	}
	if fr.Colorbar != nil {
		out.Colorbar = option(fr.Colorbar)
	}
	for _, err := range fr.Errors {
		out.Errors = append(out.Errors, err.Error())
	}
	return out
}

func (ws *WebServer) handleFrame(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	httputil.WriteJSONOK(w, ws.frame(ws.session(w, r)))
}

func (ws *WebServer) handleViews(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	fr := ws.frame(ws.session(w, r))
	httputil.WriteJSONOK(w, map[string]interface{}{
		"selection": fr.Selection,
		"views":     fr.Views,
		"colorbar":  fr.Colorbar,
		"errors":    fr.Errors,
	})
}

func (ws *WebServer) handleButterfly(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	sel := ws.session(w, r).Snapshot()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(option(ws.viewer.ButterflyFigure(sel)))
}

func (ws *WebServer) handleInfo(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	lines := ws.viewer.Info(ws.session(w, r))
	httputil.WriteJSONOK(w, map[string]interface{}{"lines": lines, "text": viewer.InfoText(lines)})
}

type clickRequest struct {
	Time   *float64 `json:"time"`
	Source *int     `json:"source"`
}

func (ws *WebServer) handleClick(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req clickRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if req.Time == nil {
		httputil.BadRequest(w, "missing 'time'")
		return
	}
	s := ws.session(w, r)
	if _, err := ws.viewer.Click(s, *req.Time, req.Source); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, ws.frame(s))
}

type hoverRequest struct {
	Time *float64 `json:"time"`
}

func (ws *WebServer) handleHover(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req hoverRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if req.Time == nil {
		httputil.BadRequest(w, "missing 'time'")
		return
	}
	s := ws.session(w, r)
	_, applied := ws.viewer.Hover(s, *req.Time)
	resp := struct {
		Applied bool `json:"applied"`
		frameResponse
	}{Applied: applied, frameResponse: ws.frame(s)}
	httputil.WriteJSONOK(w, resp)
}

type realtimeRequest struct {
	Enabled bool `json:"enabled"`
}

func (ws *WebServer) handleRealtime(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req realtimeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	s := ws.session(w, r)
	httputil.WriteJSONOK(w, ws.viewer.SetRealtime(s, req.Enabled))
}

type timeRequest struct {
	TimeIndex *int `json:"time_index"`
}

func (ws *WebServer) handleSelectTime(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req timeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if req.TimeIndex == nil {
		httputil.BadRequest(w, "missing 'time_index'")
		return
	}
	s := ws.session(w, r)
	if _, err := ws.viewer.SelectTime(s, *req.TimeIndex); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, ws.frame(s))
}

func (ws *WebServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req export.Request
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	res, err := ws.exporter.Export(r.Context(), ws.viewer, ws.session(w, r), req)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	status := http.StatusOK
	if res.Status == export.StatusFailed {
		status = http.StatusInternalServerError
	}
	httputil.WriteJSON(w, status, res)
}

func (ws *WebServer) handleExports(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	if ws.history == nil {
		httputil.NotFound(w, "export history is not configured")
		return
	}
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v <= 0 || v > 500 {
			httputil.BadRequest(w, fmt.Sprintf("invalid 'limit' %q", l))
			return
		}
		limit = v
	}
	runs, err := ws.history.Recent(r.Context(), limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("list exports: %v", err))
		return
	}
	if runs == nil {
		runs = []*history.Run{}
	}
	httputil.WriteJSONOK(w, runs)
}

func writeChart(w http.ResponseWriter, f *figure.Figure) {
	var buf bytes.Buffer
	if err := chart.RenderHTML(&buf, f); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (ws *WebServer) handleChartView(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	want := r.PathValue("view")
	figs, _ := ws.viewer.ViewFigures(ws.session(w, r).Snapshot())
	for _, f := range figs {
		if f.View == want {
			writeChart(w, f)
			return
		}
	}
	httputil.NotFound(w, fmt.Sprintf("view %q is not displayed", want))
}

func (ws *WebServer) handleChartButterfly(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeChart(w, ws.viewer.ButterflyFigure(ws.session(w, r).Snapshot()))
}

func (ws *WebServer) handleChartColorbar(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	f := ws.viewer.ColorbarFigure()
	if f == nil {
		httputil.NotFound(w, "the colour bar is attached to the last view in this layout")
		return
	}
	writeChart(w, f)
}
