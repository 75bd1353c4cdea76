package packstream

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName    = "github.com/seuros/go-packstream/src/bolt/packstream"
	instrumentationVersion = "0.1.0"
)

// ObservabilityConfig controls telemetry collection for a Packer or
// Unpacker. It mirrors the driver-level observability knobs this codec
// grew out of, scoped down to what a wire-format codec can meaningfully
// report: no query spans, just value counts, byte counts, and the rare
// reassembly-buffer refill that spans more than one underlying read.
type ObservabilityConfig struct {
	// EnableTracing enables a span per reassembly-buffer refill that
	// crosses the underlying channel's chunk boundary.
	EnableTracing bool

	// EnableMetrics enables the counters and histogram below.
	EnableMetrics bool

	// Attributes are attached to every span and metric this codec emits.
	Attributes []attribute.KeyValue
}

// DefaultObservabilityConfig returns metrics and tracing both enabled,
// tagged with a fixed component attribute.
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		EnableTracing: true,
		EnableMetrics: true,
		Attributes: []attribute.KeyValue{
			attribute.String("component", "packstream"),
		},
	}
}

// observabilityInstruments holds the lazily-initialized OpenTelemetry
// instruments shared by every Packer/Unpacker that enables observability.
type observabilityInstruments struct {
	tracer trace.Tracer
	meter  metric.Meter

	valuesPacked   metric.Int64Counter
	valuesUnpacked metric.Int64Counter
	bytesPacked    metric.Int64Counter
	bytesUnpacked  metric.Int64Counter
	decodeErrors   metric.Int64Counter
	containerSize  metric.Int64Histogram
	bufferRefills  metric.Int64Counter
}

func initObservability() *observabilityInstruments {
	tracer := otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion))
	meter := otel.Meter(instrumentationName, metric.WithInstrumentationVersion(instrumentationVersion))

	oi := &observabilityInstruments{tracer: tracer, meter: meter}

	var err error
	oi.valuesPacked, err = meter.Int64Counter("packstream.values.packed",
		metric.WithDescription("Number of values packed, by kind"))
	if err != nil {
		otel.Handle(err)
	}
	oi.valuesUnpacked, err = meter.Int64Counter("packstream.values.unpacked",
		metric.WithDescription("Number of values unpacked, by kind"))
	if err != nil {
		otel.Handle(err)
	}
	oi.bytesPacked, err = meter.Int64Counter("packstream.bytes.packed",
		metric.WithDescription("Wire bytes written by the packer"))
	if err != nil {
		otel.Handle(err)
	}
	oi.bytesUnpacked, err = meter.Int64Counter("packstream.bytes.unpacked",
		metric.WithDescription("Wire bytes consumed by the unpacker"))
	if err != nil {
		otel.Handle(err)
	}
	oi.decodeErrors, err = meter.Int64Counter("packstream.decode.errors",
		metric.WithDescription("Decode failures, by taxonomy kind"))
	if err != nil {
		otel.Handle(err)
	}
	oi.containerSize, err = meter.Int64Histogram("packstream.container.size",
		metric.WithDescription("Element/pair/field count of containers packed or unpacked"))
	if err != nil {
		otel.Handle(err)
	}
	oi.bufferRefills, err = meter.Int64Counter("packstream.buffer.refills",
		metric.WithDescription("Reassembly-buffer refills requiring more than one underlying read"))
	if err != nil {
		otel.Handle(err)
	}

	return oi
}

func (oi *observabilityInstruments) recordPack(cfg *ObservabilityConfig, kind Kind, wireBytes int) {
	if oi == nil || cfg == nil || !cfg.EnableMetrics {
		return
	}
	attrs := metric.WithAttributes(append(append([]attribute.KeyValue{}, cfg.Attributes...), attribute.String("kind", kind.String()))...)
	oi.valuesPacked.Add(context.Background(), 1, attrs)
	oi.bytesPacked.Add(context.Background(), int64(wireBytes), metric.WithAttributes(cfg.Attributes...))
}

func (oi *observabilityInstruments) recordUnpack(cfg *ObservabilityConfig, kind Kind, wireBytes int) {
	if oi == nil || cfg == nil || !cfg.EnableMetrics {
		return
	}
	attrs := metric.WithAttributes(append(append([]attribute.KeyValue{}, cfg.Attributes...), attribute.String("kind", kind.String()))...)
	oi.valuesUnpacked.Add(context.Background(), 1, attrs)
	oi.bytesUnpacked.Add(context.Background(), int64(wireBytes), metric.WithAttributes(cfg.Attributes...))
}

func (oi *observabilityInstruments) recordContainerSize(cfg *ObservabilityConfig, kind Kind, size int) {
	if oi == nil || cfg == nil || !cfg.EnableMetrics {
		return
	}
	attrs := metric.WithAttributes(append(append([]attribute.KeyValue{}, cfg.Attributes...), attribute.String("kind", kind.String()))...)
	oi.containerSize.Record(context.Background(), int64(size), attrs)
}

func (oi *observabilityInstruments) recordDecodeError(cfg *ObservabilityConfig, kind ErrorKind) {
	if oi == nil || cfg == nil || !cfg.EnableMetrics {
		return
	}
	attrs := metric.WithAttributes(append(append([]attribute.KeyValue{}, cfg.Attributes...), attribute.String("error_kind", kind.String()))...)
	oi.decodeErrors.Add(context.Background(), 1, attrs)
}

// startRefillSpan opens a span around a reassembly-buffer refill that
// required more than one underlying Read call. The common case (one read
// satisfies ensure(k)) never pays for a span.
func (oi *observabilityInstruments) startRefillSpan(ctx context.Context, cfg *ObservabilityConfig, requested int) (context.Context, trace.Span) {
	if oi == nil || cfg == nil || !cfg.EnableTracing {
		return ctx, nil
	}
	return oi.tracer.Start(ctx, "packstream.buffer.refill",
		trace.WithAttributes(append(append([]attribute.KeyValue{}, cfg.Attributes...), attribute.Int("requested_bytes", requested))...))
}

func (oi *observabilityInstruments) recordBufferRefill(cfg *ObservabilityConfig) {
	if oi == nil || cfg == nil || !cfg.EnableMetrics {
		return
	}
	oi.bufferRefills.Add(context.Background(), 1, metric.WithAttributes(cfg.Attributes...))
}

func endSpan(span trace.Span) {
	if span != nil {
		span.End()
	}
}
