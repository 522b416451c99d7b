package tracing

import (
	"context"
	"testing"

	"github.com/smallbiznis/telematch/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestDisabledProviderIsNoop(t *testing.T) {
	tp, err := NewTracerProvider(nil, Config{}, zap.NewNop())
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
}

func TestUnsupportedProtocol(t *testing.T) {
	_, err := newExporter(context.Background(), "carrier-pigeon", "")
	assert.Error(t, err)
}

func TestCorrelationProcessorStampsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(&correlationSpanProcessor{}),
		sdktrace.WithSpanProcessor(recorder),
	)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx := correlation.ContextWithCorrelationID(context.Background(), "cid-1")
	_, span := tp.Tracer("test").Start(ctx, "signup.submit")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Attributes(), attribute.String("correlation_id", "cid-1"))
}
