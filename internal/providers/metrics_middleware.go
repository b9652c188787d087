package providers

import (
	"net/http"
	"time"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// MetricsMiddleware records request counters and latency per endpoint
// and writes an access line to the http log. The endpoint label is the
// bare path; query strings (artist names, search terms) never reach
// the metrics cardinality.
func MetricsMiddleware(metrics MetricsProviderInterface, logger Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		endpoint := r.URL.Path
		metrics.IncRequestsTotal(endpoint, sw.status)
		metrics.ObserveRequestDuration(endpoint, duration)

		if sw.status >= http.StatusInternalServerError {
			logger.Errorf(TypeHttp, "%s %s -> %d (%s)", r.Method, endpoint, sw.status, duration)
		} else {
			logger.Debugf(TypeHttp, "%s %s -> %d (%s)", r.Method, endpoint, sw.status, duration)
		}
	})
}
