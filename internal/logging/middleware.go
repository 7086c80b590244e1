package logging

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	if s.status == 0 {
		s.status = status
	}
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func orMissing(value string) string {
	if value == "" {
		return "<missing>"
	}
	return value
}

// NewRequestLoggerMiddleware puts a request scoped logger in the context and logs the
// response status when the request is done.
//
// The correlation id is taken from X-Request-ID when the caller sent one.
func NewRequestLoggerMiddleware(logger *slog.Logger) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			correlationID := r.Header.Get(requestIDHeader)
			if correlationID == "" {
				correlationID = uuid.NewString()
			}

			requestLogger := logger.With(
				slog.String("correlationID", correlationID),
				slog.String("methodPath", fmt.Sprintf("%s %s", r.Method, r.URL.Path)),
				slog.String("userEmail", orMissing(strings.ToLower(r.Header.Get("X-User-Email")))),
				slog.String("userAgent", orMissing(r.UserAgent())),
			)
			ctx := AddToContext(r.Context(), requestLogger)

			recorder := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next(recorder, r.WithContext(ctx))

			if recorder.status == 0 {
				recorder.status = http.StatusOK
			}
			level := slog.LevelInfo
			if recorder.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			requestLogger.Log(ctx, level, "Request completed",
				slog.Int("status", recorder.status),
				slog.Duration("duration", time.Since(start)),
			)
		}
	}
}
