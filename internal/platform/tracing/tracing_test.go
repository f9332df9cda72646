package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled by default", func(t *testing.T) {
		p, err := NewProvider(ctx, Config{})
		require.NoError(t, err)
		assert.False(t, p.Enabled())

		_, span := p.Tracer().Start(ctx, "noop")
		span.End()
		assert.False(t, span.SpanContext().IsValid())
		assert.NoError(t, p.Shutdown(ctx))
	})

	t.Run("stdout exporter flushes on shutdown", func(t *testing.T) {
		var buf bytes.Buffer
		p, err := NewProvider(ctx, Config{Exporter: "stdout", ServiceName: "onboarding-test", Writer: &buf})
		require.NoError(t, err)
		assert.True(t, p.Enabled())

		_, span := p.Tracer().Start(ctx, "onboarding.advance")
		span.End()
		require.NoError(t, p.Shutdown(ctx))
		assert.Contains(t, buf.String(), "onboarding.advance")
	})

	t.Run("unknown exporter", func(t *testing.T) {
		_, err := NewProvider(ctx, Config{Exporter: "zipkin"})
		assert.Error(t, err)
	})
}
