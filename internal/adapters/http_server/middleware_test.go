package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func TestObserve_RecordsTimeoutStatus(t *testing.T) {
	var buf bytes.Buffer
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	m := chi.NewRouter()
	m.Use(Observe(zerolog.New(&buf)))
	m.Use(Timeout(20 * time.Millisecond))
	m.Use(RoutePattern)
	m.Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from timeout, got %d", rec.Code)
	}

	var line struct {
		Level  string `json:"level"`
		Route  string `json:"route"`
		Status int    `json:"status"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line.Status != http.StatusServiceUnavailable || line.Route != "/slow" || line.Level != "warn" {
		t.Fatalf("unexpected request log: %+v", line)
	}
}

func TestObserve_UsesRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	m := chi.NewRouter()
	m.Use(Observe(zerolog.New(&buf)))
	m.Use(Timeout(time.Second))
	m.Use(RoutePattern)
	m.Get("/v1/items/{id}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/items/42", nil))

	var line struct {
		Route  string `json:"route"`
		Status int    `json:"status"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line.Route != "/v1/items/{id}" || line.Status != http.StatusOK {
		t.Fatalf("unexpected request log: %+v", line)
	}
}
