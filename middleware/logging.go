package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"scoredAPI/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger logs one line per request and echoes a request id, generating
// one when the client didn't send it.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		fields := []interface{}{
			"request_id", requestID,
			"method", r.Method,
			"route", routePath(r),
			"status", ww.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if ww.statusCode >= http.StatusInternalServerError {
			logger.Error("Request failed", fields...)
			return
		}
		logger.Info("Request handled", fields...)
	})
}
