package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstreamhq/recur-api/internal/api/shared"
)

func TestNewTraceMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("stamps a trace ID on the request context", func(t *testing.T) {
		var seenTraceID string
		handler := NewTraceMiddleware(logger)(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				seenTraceID = shared.GetTraceID(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.NotEmpty(t, seenTraceID)
		assert.Len(t, seenTraceID, shared.TraceIDLength*2, "trace ID should be hex-encoded")
	})

	t.Run("each request gets its own trace ID", func(t *testing.T) {
		traceIDs := make(map[string]struct{})
		handler := NewTraceMiddleware(logger)(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				traceIDs[shared.GetTraceID(r.Context())] = struct{}{}
			}))

		for i := 0; i < 3; i++ {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		}

		assert.Len(t, traceIDs, 3)
	})

	t.Run("nil logger is tolerated", func(t *testing.T) {
		handler := NewTraceMiddleware(nil)(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
