package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"reco-api-go/stats"
)

const colorReset = "\033[0m"

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// getStatusColor returns the ANSI color for a status code class
func getStatusColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "\033[32m" // Green
	case statusCode >= 300 && statusCode < 400:
		return "\033[36m" // Cyan
	case statusCode >= 400 && statusCode < 500:
		return "\033[33m" // Yellow
	default:
		return "\033[31m" // Red
	}
}

// LoggingMiddleware logs every request with its status, duration, and
// remote address, and feeds the stats counters.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		duration := time.Since(start)

		s := stats.Get()
		s.RecordRequest(r.URL.Path)
		s.RecordStatusCode(recorder.status)
		s.RecordResponseTime(duration)

		statusColor := getStatusColor(recorder.status)
		log.Infof("%s %s %s%d%s %s %s",
			r.Method,
			r.URL.Path,
			statusColor,
			recorder.status,
			colorReset,
			duration.Round(time.Millisecond),
			r.RemoteAddr,
		)
	})
}
