package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(t.Context(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NoError(t, tp.ForceFlush(t.Context()))
	assert.NoError(t, tp.Shutdown(t.Context()))
}

func TestNewTracerProvider_DisabledTracerStillUsable(t *testing.T) {
	tp, err := NewTracerProvider(t.Context(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	tracer := tp.Tracer("test")
	_, span := tracer.Start(t.Context(), "noop-span")
	span.End()

	assert.False(t, span.SpanContext().IsValid(), "no-op provider should not record spans")
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, "postgresql", cfg.DBSystem)
	assert.Positive(t, cfg.SlowQueryThresh)
}
