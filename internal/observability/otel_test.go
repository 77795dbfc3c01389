package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/tbourn/legal-aid-backend/internal/config"
)

// withSeams restores the OTel globals and the exporter/resource seams after t.
func withSeams(t *testing.T) {
	t.Helper()
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	prevExp, prevRes := newExporter, newResource
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
		newExporter, newResource = prevExp, prevRes
	})
}

func inMemory(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	newExporter = func(context.Context, config.OTELConfig) (sdktrace.SpanExporter, error) { return exp, nil }
	return exp
}

func enabled(name string, ratio float64) config.OTELConfig {
	return config.OTELConfig{Enabled: true, Insecure: true, Endpoint: "localhost:4317", ServiceName: name, SampleRatio: ratio}
}

func TestSetupOTel_Disabled(t *testing.T) {
	withSeams(t)
	newExporter = func(context.Context, config.OTELConfig) (sdktrace.SpanExporter, error) {
		t.Fatal("exporter must not be built when tracing is disabled")
		return nil, nil
	}
	prevTP := otel.GetTracerProvider()

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Endpoint: "ignored:4317"}, "v0")
	if err != nil || shutdown == nil {
		t.Fatalf("got (%v, %v)", shutdown, err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown: %v", err)
	}
	if otel.GetTracerProvider() != prevTP {
		t.Fatal("tracer provider replaced while disabled")
	}
}

func TestSetupOTel_ExportsSpansWithServiceResource(t *testing.T) {
	withSeams(t)
	exp := inMemory(t)

	shutdown, err := SetupOTel(context.Background(), enabled("legal-aid-test", 1), "v1.2.3")
	if err != nil {
		t.Fatalf("SetupOTel: %v", err)
	}

	_, span := otel.Tracer("services/CaseService").Start(context.Background(), "CaseService.Create")
	Finish(span, errors.New("description too short"))

	var got []tracetest.SpanStub
	if err := shutdownAndCollect(shutdown, exp, &got); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if len(got) != 1 || got[0].Name != "CaseService.Create" {
		t.Fatalf("exported spans = %+v", got)
	}
	attrs := got[0].Resource.Attributes()
	want := map[string]string{
		string(semconv.ServiceNameKey):    "legal-aid-test",
		string(semconv.ServiceVersionKey): "v1.2.3",
	}
	for _, kv := range attrs {
		if v, ok := want[string(kv.Key)]; ok && kv.Value.AsString() == v {
			delete(want, string(kv.Key))
		}
	}
	if len(want) != 0 {
		t.Fatalf("resource missing %v in %v", want, attrs)
	}
}

// shutdownAndCollect flushes pending spans, snapshots them, then shuts down.
func shutdownAndCollect(shutdown ShutdownFunc, exp *tracetest.InMemoryExporter, out *[]tracetest.SpanStub) error {
	tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	if !ok {
		return errors.New("tracer provider not installed")
	}
	if err := tp.ForceFlush(context.Background()); err != nil {
		return err
	}
	*out = exp.GetSpans()
	return shutdown(context.Background())
}

func TestSetupOTel_InstallsW3CPropagator(t *testing.T) {
	withSeams(t)
	inMemory(t)

	shutdown, err := SetupOTel(context.Background(), enabled("svc", 1), "v1")
	if err != nil {
		t.Fatalf("SetupOTel: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	ctx, span := otel.Tracer("test").Start(context.Background(), "request")
	defer span.End()
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	if carrier.Get("traceparent") == "" {
		t.Fatalf("traceparent not injected: %v", carrier)
	}
}

func TestSetupOTel_SampleRatioZeroDropsRootSpans(t *testing.T) {
	withSeams(t)
	exp := inMemory(t)

	shutdown, err := SetupOTel(context.Background(), enabled("svc", 0), "v1")
	if err != nil {
		t.Fatalf("SetupOTel: %v", err)
	}
	_, span := otel.Tracer("test").Start(context.Background(), "dropped")
	if span.SpanContext().IsSampled() {
		t.Fatal("root span sampled at ratio 0")
	}
	span.End()

	var got []tracetest.SpanStub
	if err := shutdownAndCollect(shutdown, exp, &got); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no exported spans, got %d", len(got))
	}
}

func TestSetupOTel_ExporterError_LeavesGlobals(t *testing.T) {
	withSeams(t)
	newExporter = func(context.Context, config.OTELConfig) (sdktrace.SpanExporter, error) {
		return nil, errors.New("collector unreachable")
	}
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()

	if _, err := SetupOTel(context.Background(), enabled("svc", 1), "v0"); err == nil {
		t.Fatal("expected error")
	}
	if otel.GetTracerProvider() != prevTP || otel.GetTextMapPropagator() != prevProp {
		t.Fatal("globals changed on failure")
	}
}

func TestSetupOTel_ResourceError_ShutsDownExporter(t *testing.T) {
	withSeams(t)
	exp := &countingExporter{}
	newExporter = func(context.Context, config.OTELConfig) (sdktrace.SpanExporter, error) { return exp, nil }
	newResource = func(context.Context, string, string) (*resource.Resource, error) {
		return nil, errors.New("bad resource")
	}
	prevTP := otel.GetTracerProvider()

	if _, err := SetupOTel(context.Background(), enabled("svc", 1), "v0"); err == nil {
		t.Fatal("expected error")
	}
	if exp.shutdowns != 1 {
		t.Fatalf("exporter shut down %d times, want 1", exp.shutdowns)
	}
	if otel.GetTracerProvider() != prevTP {
		t.Fatal("tracer provider changed on failure")
	}
}

func TestSetupOTel_RealExporterBuildsLazily(t *testing.T) {
	withSeams(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, insecure := range []bool{true, false} {
		cfg := enabled("svc", 0.5)
		cfg.Insecure = insecure
		shutdown, err := SetupOTel(ctx, cfg, "v1")
		if err != nil {
			t.Fatalf("insecure=%v: %v", insecure, err)
		}
		sctx, scancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
		_ = shutdown(sctx)
		scancel()
	}
}

type countingExporter struct{ shutdowns int }

func (*countingExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }
func (e *countingExporter) Shutdown(context.Context) error { e.shutdowns++; return nil }
