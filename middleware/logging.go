// Package middleware provides HTTP middleware for the lookup server.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type errorKey struct{}

// RecordError attaches err to the request being logged by Logging so that
// the completion record carries it. It is a no-op outside Logging.
func RecordError(ctx context.Context, err error) {
	if slot, ok := ctx.Value(errorKey{}).(*error); ok {
		*slot = err
	}
}

// statusRecorder captures the status code written by the next handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Logging returns an HTTP middleware that logs requests using slog.
// It logs the start and end of each request, including status and duration.
// Responses with a status of 400 or above are logged as failures.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			var handlerErr error
			ctx := context.WithValue(r.Context(), errorKey{}, &handlerErr)

			logger.DebugContext(ctx, "request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			duration := time.Since(start)

			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", duration),
			}
			if rec.status >= http.StatusBadRequest {
				if handlerErr != nil {
					attrs = append(attrs, slog.Any("error", handlerErr))
				}
				logger.ErrorContext(ctx, "request failed", attrs...)
				return
			}
			logger.InfoContext(ctx, "request completed", attrs...)
		})
	}
}
