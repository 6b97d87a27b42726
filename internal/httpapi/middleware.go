package httpapi

import (
	"log"
	"net/http"
	"time"
)

// loggingMiddleware records each request with its duration. The
// diagnostics surface is low-traffic, so one line per request is fine.
func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Printf("%s %s from=%s dur=%s", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}
