package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitLogger_Levels(t *testing.T) {
	ctx := context.Background()
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		logger := InitLogger(in)
		assert.True(t, logger.Enabled(ctx, want), in)
		if want > slog.LevelDebug {
			assert.False(t, logger.Enabled(ctx, want-1), in)
		}
	}
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown := InitTracing(context.Background(), "test", "")
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitMetrics_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		InitMetrics()
		InitMetrics()
	})
}
