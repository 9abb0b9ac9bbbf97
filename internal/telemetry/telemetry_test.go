package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Options{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracersStartSpans(t *testing.T) {
	ctx := context.Background()

	_, span := Tracer("test").Start(ctx, "op")
	span.End()

	_, span = NoopTracer().Start(ctx, "op")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}
