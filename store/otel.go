package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/zero-day-ai/protomap/store"

// instruments holds the tracer and metric instruments for one store.
type instruments struct {
	backend string
	tracer  trace.Tracer

	// opsCounter counts operations by op and outcome
	opsCounter metric.Int64Counter

	// durationHistogram records operation latency in milliseconds
	durationHistogram metric.Float64Histogram
}

func newInstruments(backend string, tracer trace.Tracer, mp metric.MeterProvider) (*instruments, error) {
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}
	if mp == nil {
		mp = metricnoop.NewMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	inst := &instruments{backend: backend, tracer: tracer}
	var err error

	inst.opsCounter, err = meter.Int64Counter(
		"protomap.store.operations",
		metric.WithDescription("Number of store operations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create operations counter: %w", err)
	}

	inst.durationHistogram, err = meter.Float64Histogram(
		"protomap.store.duration",
		metric.WithDescription("Store operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return inst, nil
}

// start opens a span for op. The returned function ends the span and records
// the metrics; it must be called exactly once with the operation's error.
func (i *instruments) start(ctx context.Context, op, key string) (context.Context, func(error)) {
	began := time.Now()
	ctx, span := i.tracer.Start(ctx, "store."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("store.backend", i.backend),
		attribute.String("store.op", op),
	)
	if key != "" {
		span.SetAttributes(attribute.String("store.key", key))
	}

	return ctx, func(err error) {
		outcome := "ok"
		switch {
		case errors.Is(err, ErrNotFound):
			outcome = "not_found"
			span.SetStatus(codes.Error, err.Error())
		case err != nil:
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		default:
			span.SetStatus(codes.Ok, "")
		}
		span.End()

		opts := metric.WithAttributes(
			attribute.String("backend", i.backend),
			attribute.String("op", op),
			attribute.String("outcome", outcome),
		)
		i.opsCounter.Add(ctx, 1, opts)
		i.durationHistogram.Record(ctx, float64(time.Since(began).Microseconds())/1000, opts)
	}
}
