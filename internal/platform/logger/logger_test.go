package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstreamhq/recur-api/internal/config"
)

func TestSetup_LevelParsing(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{name: "debug", logLevel: "debug"},
		{name: "info", logLevel: "info"},
		{name: "warn", logLevel: "warn"},
		{name: "error", logLevel: "error"},
		{name: "mixed_case", logLevel: "DeBuG"},
		{name: "invalid_falls_back_to_info", logLevel: "chatty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: tt.logLevel})
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestFromContext_Fallback(t *testing.T) {
	// No logger installed: the default is returned, never nil.
	assert.NotNil(t, FromContext(context.Background()))
	assert.NotNil(t, FromContext(nil)) //nolint:staticcheck // exercising nil-context tolerance
}

func TestWithLogger_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithLogger(context.Background(), logger)
	got := FromContext(ctx)
	require.Same(t, logger, got)

	got.Info("hello", slog.String("k", "v"))
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestFromContextOrDefault(t *testing.T) {
	var buf bytes.Buffer
	fallback := slog.New(slog.NewJSONHandler(&buf, nil))

	// Context without a logger: the provided default wins.
	got := FromContextOrDefault(context.Background(), fallback)
	assert.Same(t, fallback, got)

	// Context with a logger: the context logger wins.
	ctxLogger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := WithLogger(context.Background(), ctxLogger)
	assert.Same(t, ctxLogger, FromContextOrDefault(ctx, fallback))

	// Nil default degrades to the process default.
	assert.NotNil(t, FromContextOrDefault(context.Background(), nil))
}
