package middleware

import (
	"log"
	"net/http"
	"time"
)

// statusWriter captures the status code and body size for the access log.
// Handlers that never call WriteHeader implicitly answer 200.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

// Logger writes one access-log line per request: method, path, status, body
// size, latency and the correlation id.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		log.Printf("[http] %s %s %d %dB %s id=%s",
			r.Method, r.URL.Path, sw.status, sw.written, time.Since(start),
			GetRequestID(r.Context()))
	})
}
