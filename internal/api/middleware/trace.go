package middleware

import (
	"log/slog"
	"net/http"

	"github.com/workstreamhq/recur-api/internal/api/shared"
)

// NewTraceMiddleware returns middleware that stamps each request's context
// with a fresh trace ID and logs the incoming request. Apply it early in the
// chain so every subsequent handler and error response can correlate on the
// trace ID. A nil logger falls back to the default logger.
func NewTraceMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			logger.Debug("request started",
				slog.String("trace_id", traceID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
