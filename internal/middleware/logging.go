package middleware

import (
	"net/http"
	"time"

	"github.com/clovermart/storefront/pkg/logger"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestLogging logs one line per request with method, path, status and
// duration.
func RequestLogging(log *logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewDefault("http")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.WithField("method", r.Method).
				WithField("path", r.URL.Path).
				WithField("status", sw.status).
				WithField("duration", time.Since(start).String()).
				Debug("request handled")
		})
	}
}
