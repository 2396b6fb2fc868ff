package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return rec, tp
}

func attr(s sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range s.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingHooksCompletionSpans(t *testing.T) {
	rec, tp := newRecorder()
	h := NewTracingHooks(tp)
	ctx := context.Background()

	h.OnNetlistComplete(ctx, "llm", 5, 2*time.Second, nil)
	h.OnRenderComplete(ctx, "svg", time.Millisecond, errors.New("boom"))

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}

	netlist := spans[0]
	if netlist.Name() != "netlist.generate" {
		t.Errorf("name = %q", netlist.Name())
	}
	if got := netlist.EndTime().Sub(netlist.StartTime()); got != 2*time.Second {
		t.Errorf("duration = %v, want 2s", got)
	}
	if v, ok := attr(netlist, "components"); !ok || v.AsInt64() != 5 {
		t.Errorf("components attribute = %v, %v", v, ok)
	}
	if netlist.Status().Code == codes.Error {
		t.Error("successful span should not carry an error status")
	}

	render := spans[1]
	if render.Status().Code != codes.Error || render.Status().Description != "boom" {
		t.Errorf("status = %+v, want error boom", render.Status())
	}
}

func TestTracingHooksCacheEvents(t *testing.T) {
	rec, tp := newRecorder()
	h := NewTracingHooks(tp)

	ctx, parent := tp.Tracer("test").Start(context.Background(), "generate")
	h.OnCacheMiss(ctx, "netlist")
	h.OnCacheSet(ctx, "netlist", 128)
	h.OnCacheHit(ctx, "artifact")
	parent.End()

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	var names []string
	for _, e := range spans[0].Events() {
		names = append(names, e.Name)
	}
	want := []string{"cache.miss", "cache.set", "cache.hit"}
	if len(names) != len(want) {
		t.Fatalf("events = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestTracingHooksHTTPStatus(t *testing.T) {
	rec, tp := newRecorder()
	h := NewTracingHooks(tp)
	ctx := context.Background()

	h.OnResponse(ctx, "POST", "example.com", "/v1", 200, time.Millisecond)
	h.OnResponse(ctx, "POST", "example.com", "/v1", 503, time.Millisecond)

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Status().Code == codes.Error {
		t.Error("200 should not be an error")
	}
	if spans[1].Status().Code != codes.Error {
		t.Error("503 should be an error")
	}
	if v, _ := attr(spans[1], "http.response.status_code"); v.AsInt64() != 503 {
		t.Errorf("status attribute = %d", v.AsInt64())
	}
}

func TestInstallTracing(t *testing.T) {
	defer Reset()
	_, tp := newRecorder()
	h := InstallTracing(tp)
	if Pipeline() != PipelineHooks(h) || Cache() != CacheHooks(h) || HTTP() != HTTPHooks(h) {
		t.Error("InstallTracing should register the hooks for every category")
	}
}

func TestLogTracerProvider(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	tp := NewLogTracerProvider(logger)
	defer tp.Shutdown(context.Background())

	NewTracingHooks(tp).OnPublishComplete(context.Background(), "local", time.Millisecond, nil)

	out := buf.String()
	if !strings.Contains(out, "publish") || !strings.Contains(out, "uploader=local") {
		t.Errorf("log output missing span: %q", out)
	}
}
