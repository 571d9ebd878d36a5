package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zero-day-ai/protomap/internal/testpb"
)

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestRedisStore_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	s, _ := setupRedisStore(t, Options{
		Tracer:        tp.Tracer("test"),
		MeterProvider: noop.NewMeterProvider(),
	})
	ctx := context.Background()

	_, err := s.Put(ctx, "k", testpb.Sample())
	require.NoError(t, err)
	_, err = s.Get(ctx, "missing", testpb.Type(testpb.MessageName))
	require.Error(t, err)
	_, err = s.Keys(ctx)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	assert.Equal(t, "store.put", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	backend, ok := spanAttr(spans[0], "store.backend")
	require.True(t, ok)
	assert.Equal(t, "redis", backend.AsString())
	key, ok := spanAttr(spans[0], "store.key")
	require.True(t, ok)
	assert.Equal(t, "k", key.AsString())

	assert.Equal(t, "store.get", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)

	assert.Equal(t, "store.keys", spans[2].Name())
	_, ok = spanAttr(spans[2], "store.key")
	assert.False(t, ok, "keys has no key attribute")
}

func TestInstruments_Defaults(t *testing.T) {
	inst, err := newInstruments("test", nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, inst.tracer)
	assert.NotNil(t, inst.opsCounter)
	assert.NotNil(t, inst.durationHistogram)

	// With no-op providers the callbacks must still be safe to call.
	_, done := inst.start(context.Background(), "get", "k")
	done(nil)
	_, done = inst.start(context.Background(), "get", "k")
	done(ErrNotFound)
}
