package api

import (
	"net/http"
	"strconv"
	"time"

	"ipo-radar/observability"

	"github.com/go-chi/chi/v5"
)

// unmatchedRoute labels requests no route matched, so arbitrary paths do not
// become metric series
const unmatchedRoute = "unmatched"

// responseWriter wraps http.ResponseWriter to capture status code and response size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	responseSize int
	wroteHeader  bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader keeps the first status written, matching what net/http sends
func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	size, err := rw.ResponseWriter.Write(b)
	rw.responseSize += size
	return size, err
}

// routeLabel returns the matched chi pattern for r
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}

// MetricsMiddleware records HTTP metrics for each request and logs it at
// debug level. HTMX partial renders are flagged in the log line.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		route := routeLabel(r)
		duration := time.Since(start)

		observability.GetMetrics().RecordHTTPRequest(r.Method, route, strconv.Itoa(wrapped.statusCode), duration, wrapped.responseSize)

		observability.WithContext(r.Context()).Debug("request",
			"method", r.Method,
			"route", route,
			"status", wrapped.statusCode,
			"bytes", wrapped.responseSize,
			"htmx", isHTMXRequest(r),
			"duration_ms", duration.Milliseconds())
	})
}
