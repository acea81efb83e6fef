// internal/adapters/http_server/handlers.go
package httpserver

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"tourism_dashboard/internal/app"
	"tourism_dashboard/internal/domain"
)

type ChartRenderer interface {
	Bar(c domain.BarChart) ([]byte, error)
	Scatter(c domain.ScatterChart) ([]byte, error)
}

type Handlers struct {
	D      *app.Dashboard
	Data   *app.DatasetService
	Charts ChartRenderer
	Render *semaphore.Weighted // bounds concurrent PNG renders; nil means unbounded
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/", h.page)
	s.mux.Get("/v1/dashboard", h.dashboard)
	s.mux.Get("/v1/towns", h.towns)
	s.mux.Get("/v1/charts/infrastructure.png", h.barPNG)
	s.mux.Get("/v1/charts/cafes-restaurants.png", h.scatterPNG)
	s.mux.Post("/v1/dataset/invalidate", h.invalidate)
}

// parseSelection reads the dashboard controls from the query string.
// No town params and no "towns" marker means the default (every town);
// the form always sends the marker, so an empty multi-select selects nothing.
func parseSelection(q url.Values) (domain.Selection, error) {
	mode, err := domain.ParseInitiativeMode(q.Get("initiative"))
	if err != nil {
		return domain.Selection{}, err
	}
	towns := q["town"]
	_, marked := q["towns"]
	return domain.Selection{
		Towns:      towns,
		AllTowns:   len(towns) == 0 && !marked,
		Initiative: mode,
	}, nil
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeLoadError maps pipeline failures to a generic problem response.
func writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	log.Error().Err(err).Str("path", r.URL.Path).Msg("dashboard render failed")
	switch {
	case errors.Is(err, domain.ErrUpstream):
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", "dataset source unavailable")
	case errors.Is(err, domain.ErrMissingColumn):
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", "dataset schema mismatch")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "request cancelled")
	default:
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "encode failed")
		return
	}
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write JSON body")
	}
}

// render runs the pipeline for the request's selection. It writes the error
// response itself and reports whether the caller should continue.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request) (domain.DashboardPage, bool) {
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid initiative", err.Error())
		return domain.DashboardPage{}, false
	}
	page, err := h.D.Render(r.Context(), sel)
	if err != nil {
		writeLoadError(w, r, err)
		return domain.DashboardPage{}, false
	}
	return page, true
}

func (h *Handlers) page(w http.ResponseWriter, r *http.Request) {
	page, ok := h.render(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, newPageData(page, r.URL.Query())); err != nil {
		log.Error().Err(err).Msg("dashboard template failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Msg("failed to write dashboard page")
	}
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	page, ok := h.render(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, page)
}

func (h *Handlers) towns(w http.ResponseWriter, r *http.Request) {
	towns, err := h.D.Towns(r.Context())
	if err != nil {
		writeLoadError(w, r, err)
		return
	}
	writeJSON(w, r, struct {
		Towns []string `json:"towns"`
	}{towns})
}

func (h *Handlers) barPNG(w http.ResponseWriter, r *http.Request) {
	h.png(w, r, func(v domain.DashboardView) ([]byte, error) { return h.Charts.Bar(v.Bar) })
}

func (h *Handlers) scatterPNG(w http.ResponseWriter, r *http.Request) {
	h.png(w, r, func(v domain.DashboardView) ([]byte, error) { return h.Charts.Scatter(v.Scatter) })
}

func (h *Handlers) png(w http.ResponseWriter, r *http.Request, draw func(domain.DashboardView) ([]byte, error)) {
	page, ok := h.render(w, r)
	if !ok {
		return
	}
	if h.Render != nil {
		if err := h.Render.Acquire(r.Context(), 1); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "render queue timeout")
			return
		}
		defer h.Render.Release(1)
	}
	img, err := draw(page.View)
	if err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("chart render failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "chart render failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		log.Error().Err(err).Msg("failed to write chart")
	}
}

func (h *Handlers) invalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.Data.Invalidate(r.Context()); err != nil {
		log.Error().Err(err).Msg("dataset invalidate failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "invalidate failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
