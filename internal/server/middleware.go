package server

import (
	"net/http"

	"github.com/charmbracelet/log"
)

// RequestLog returns [Middleware] that logs each request's method and path.
// The callback server only ever sees a handful of requests, so one line per
// request is plenty.
func RequestLog(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug("request received", "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}
