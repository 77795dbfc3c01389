package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestFinish_RecordsStatus(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	tr := tp.Tracer("test")

	_, okSpan := tr.Start(context.Background(), "ok")
	Finish(okSpan, nil)
	_, badSpan := tr.Start(context.Background(), "bad")
	Finish(badSpan, errors.New("model unavailable"))

	ended := rec.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected 2 ended spans, got %d", len(ended))
	}
	if ended[0].Status().Code != codes.Ok {
		t.Fatalf("ok span status = %v", ended[0].Status())
	}
	if ended[1].Status().Code != codes.Error || ended[1].Status().Description != "model unavailable" {
		t.Fatalf("bad span status = %v", ended[1].Status())
	}
	if len(ended[1].Events()) == 0 {
		t.Fatalf("expected recorded error event on failed span")
	}
}
