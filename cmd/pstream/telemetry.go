package main

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// setupTelemetry wires the codec's otel.Tracer/otel.Meter global handles
// to real stdout exporters when PSTREAM_OTEL is set in the environment,
// so running any pstream subcommand with that variable set prints the
// spans and counters the packstream package records (buffer-refill
// spans, values/bytes packed and unpacked, container sizes) instead of
// discarding them through the default no-op providers. Without it,
// pstream behaves exactly as before: the codec's otel calls are free.
func setupTelemetry() (func(context.Context) error, error) {
	if os.Getenv("PSTREAM_OTEL") == "" {
		return func(context.Context) error { return nil }, nil
	}

	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	if err != nil {
		return nil, runtimeErrorf("otel: trace exporter: %v", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExporter))
	otel.SetTracerProvider(tp)

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr))
	if err != nil {
		return nil, runtimeErrorf("otel: metric exporter: %v", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)))
	otel.SetMeterProvider(mp)

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return err
		}
		return mp.Shutdown(ctx)
	}, nil
}
