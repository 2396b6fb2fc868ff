package observability

import (
	"context"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// LogExporter writes finished spans to a charm logger at debug level.
// It never fails, so tracing problems cannot break a generation.
type LogExporter struct {
	logger *log.Logger
}

// NewLogExporter creates an exporter writing to logger.
func NewLogExporter(logger *log.Logger) *LogExporter {
	if logger == nil {
		logger = log.Default()
	}
	return &LogExporter{logger: logger.WithPrefix("trace")}
}

// ExportSpans logs each span with its duration, status and attributes.
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		kv := []any{
			"duration", s.EndTime().Sub(s.StartTime()),
			"trace", s.SpanContext().TraceID().String(),
		}
		for _, a := range s.Attributes() {
			kv = append(kv, string(a.Key), a.Value.Emit())
		}
		if desc := s.Status().Description; desc != "" {
			kv = append(kv, "error", desc)
		}
		e.logger.Debug(s.Name(), kv...)
	}
	return nil
}

// Shutdown does nothing.
func (e *LogExporter) Shutdown(ctx context.Context) error { return nil }

// NewLogTracerProvider returns a tracer provider that exports every span
// synchronously to logger.
func NewLogTracerProvider(logger *log.Logger) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", "circuitdraw"),
	)
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(NewLogExporter(logger))),
		sdktrace.WithResource(res),
	)
}

var _ sdktrace.SpanExporter = (*LogExporter)(nil)
