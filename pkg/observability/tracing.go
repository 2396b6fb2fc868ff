package observability

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans emitted by circuitdraw.
const TracerName = "github.com/matzehuels/circuitdraw"

// TracingHooks turns hook events into OpenTelemetry spans.
//
// Completion events carry their duration, so each becomes one span whose
// start time is backdated by that duration. Cache events are recorded as
// span events on the span already in ctx, if any.
type TracingHooks struct {
	tracer trace.Tracer
}

// NewTracingHooks creates hooks that record spans through tp.
func NewTracingHooks(tp trace.TracerProvider) *TracingHooks {
	return &TracingHooks{tracer: tp.Tracer(TracerName)}
}

// InstallTracing registers tracing hooks for every category.
func InstallTracing(tp trace.TracerProvider) *TracingHooks {
	h := NewTracingHooks(tp)
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
	return h
}

func (h *TracingHooks) span(ctx context.Context, name string, duration time.Duration, err error, attrs ...attribute.KeyValue) {
	end := time.Now()
	_, span := h.tracer.Start(ctx, name,
		trace.WithTimestamp(end.Add(-duration)),
		trace.WithAttributes(attrs...),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End(trace.WithTimestamp(end))
}

func (h *TracingHooks) OnNetlistStart(ctx context.Context, source, request string) {
	trace.SpanFromContext(ctx).AddEvent("netlist.start",
		trace.WithAttributes(attribute.String("source", source), attribute.Int("request.length", len(request))))
}

func (h *TracingHooks) OnNetlistComplete(ctx context.Context, source string, components int, duration time.Duration, err error) {
	h.span(ctx, "netlist.generate", duration, err,
		attribute.String("source", source),
		attribute.Int("components", components))
}

func (h *TracingHooks) OnTextComplete(ctx context.Context, kind string, duration time.Duration, err error) {
	h.span(ctx, "text."+kind, duration, err, attribute.String("kind", kind))
}

func (h *TracingHooks) OnRenderStart(ctx context.Context, format string) {
	trace.SpanFromContext(ctx).AddEvent("render.start", trace.WithAttributes(attribute.String("format", format)))
}

func (h *TracingHooks) OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error) {
	h.span(ctx, "render", duration, err, attribute.String("format", format))
}

func (h *TracingHooks) OnPublishComplete(ctx context.Context, uploader string, duration time.Duration, err error) {
	h.span(ctx, "publish", duration, err, attribute.String("uploader", uploader))
}

func (h *TracingHooks) OnCacheHit(ctx context.Context, keyType string) {
	trace.SpanFromContext(ctx).AddEvent("cache.hit", trace.WithAttributes(attribute.String("key_type", keyType)))
}

func (h *TracingHooks) OnCacheMiss(ctx context.Context, keyType string) {
	trace.SpanFromContext(ctx).AddEvent("cache.miss", trace.WithAttributes(attribute.String("key_type", keyType)))
}

func (h *TracingHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	trace.SpanFromContext(ctx).AddEvent("cache.set",
		trace.WithAttributes(attribute.String("key_type", keyType), attribute.Int("size", size)))
}

func (h *TracingHooks) OnRequest(ctx context.Context, method, host, path string) {}

func (h *TracingHooks) OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration) {
	var err error
	if statusCode >= 400 {
		err = httpStatusError(statusCode)
	}
	h.span(ctx, "http "+method, duration, err,
		attribute.String("http.request.method", method),
		attribute.String("server.address", host),
		attribute.String("url.path", path),
		attribute.Int("http.response.status_code", statusCode))
}

func (h *TracingHooks) OnError(ctx context.Context, method, host, path string, err error) {
	h.span(ctx, "http "+method, 0, err,
		attribute.String("http.request.method", method),
		attribute.String("server.address", host),
		attribute.String("url.path", path))
}

type httpStatusError int

func (e httpStatusError) Error() string {
	return "http status " + strconv.Itoa(int(e))
}

var (
	_ PipelineHooks = (*TracingHooks)(nil)
	_ CacheHooks    = (*TracingHooks)(nil)
	_ HTTPHooks     = (*TracingHooks)(nil)
)
