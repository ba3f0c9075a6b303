// internal/middleware/logger.go
package middleware

import (
	"log"
	"net/http"
	"time"
)

// Logger logs one line per request: method, path, status, response
// size and duration. POS terminals poll the floor map constantly, so
// the line stays short.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Printf("%s %s %d %dB %s %s",
			r.Method, r.URL.Path, rec.status, rec.bytes,
			time.Since(start).Round(time.Millisecond), r.RemoteAddr)
	})
}

// responseRecorder captures the status code and body size written by
// the wrapped handler
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *responseRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *responseRecorder) Write(p []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(p)
	rec.bytes += n
	return n, err
}
