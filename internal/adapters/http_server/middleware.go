package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"tourism_dashboard/internal/adapters/observability"
)

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return http.TimeoutHandler(next, d, "timeout") }
}

// statusRecorder remembers the first status and counts body bytes.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// routeHolder carries the matched chi pattern out of the handler goroutine
// that http.TimeoutHandler starts.
type routeHolder struct {
	mu      sync.Mutex
	pattern string
}

type routeKey struct{}

func (h *routeHolder) get(fallback string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pattern == "" {
		return fallback
	}
	return h.pattern
}

// RoutePattern records the chi pattern for Observe. Register it after Timeout.
func RoutePattern(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		h, ok := r.Context().Value(routeKey{}).(*routeHolder)
		rc := chi.RouteContext(r.Context())
		if !ok || rc == nil {
			return
		}
		h.mu.Lock()
		h.pattern = rc.RoutePattern()
		h.mu.Unlock()
	})
}

// Observe records Prometheus request metrics and writes one structured log
// line per request, keyed by the chi route pattern. It sits outside Timeout so
// a request cut off by the deadline is recorded with its 503.
func Observe(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusRecorder{ResponseWriter: w}
			holder := &routeHolder{}
			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), routeKey{}, holder)))

			// unmatched or timed-out requests fall back to the raw path
			route := holder.get(r.URL.Path)
			dur := time.Since(start)
			observability.ObserveHTTP(route, r.Method, sw.Status(), dur)

			ev := l.Info()
			if sw.Status() >= 500 {
				ev = l.Warn()
			}
			ev.Str("route", route).
				Str("method", r.Method).
				Int("status", sw.Status()).
				Int("bytes", sw.bytes).
				Dur("duration", dur).
				Str("remote", r.RemoteAddr). // RealIP has already applied X-Forwarded-For
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("ua", r.UserAgent()).
				Msg("http_request")
		})
	}
}
