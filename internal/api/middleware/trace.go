package middleware

import (
	"log/slog"
	"net/http"

	"github.com/coursehub/coursehub-api/internal/api/shared"
	"github.com/coursehub/coursehub-api/internal/platform/logger"
)

// NewTraceMiddleware returns middleware that gives each request a trace ID and a
// context logger carrying it. Apply it before any handler that logs.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			log := base.With(slog.String("trace_id", shared.GetTraceID(ctx)))

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(logger.WithContext(ctx, log)))
		})
	}
}
