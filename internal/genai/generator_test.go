package genai

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tbourn/legal-aid-backend/internal/prompt"
	"github.com/tbourn/legal-aid-backend/internal/schema"
)

func newGen(t *testing.T, m Model, opts Options) *Generator {
	t.Helper()
	g, err := NewGenerator(m, schema.MustRegistry(), prompt.MustLoad(), opts)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	g.sleep = func(context.Context, time.Duration) error { return nil }
	return g
}

func adviceReq() Request {
	return Request{
		TemplateID: schema.LegalAdvice,
		Input:      map[string]any{"query": "What are tenant rights in Mumbai?"},
		Language:   "en",
		Provisions: []string{"Maharashtra Rent Control Act 1999, s.7"},
	}
}

func TestGenerate_Success_PassesPromptAndSchema(t *testing.T) {
	var got Call
	m := ModelFunc(func(_ context.Context, c Call) (string, error) {
		got = c
		return `{"advice":"You may approach the Rent Controller."}`, nil
	})
	g := newGen(t, m, Options{})

	base := testutil.ToFloat64(generations.WithLabelValues(schema.LegalAdvice, outcomeOK))
	out, err := g.Generate(context.Background(), adviceReq())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"advice": "You may approach the Rent Controller."}, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(got.Prompt.User, "Maharashtra Rent Control Act") || !strings.Contains(got.Prompt.User, "tenant rights") {
		t.Fatalf("prompt not rendered with input/provisions:\n%s", got.Prompt.User)
	}
	if got.Schema["additionalProperties"] != false || got.TemplateID != schema.LegalAdvice {
		t.Fatalf("call should carry the closed output schema: %+v", got)
	}
	if v := testutil.ToFloat64(generations.WithLabelValues(schema.LegalAdvice, outcomeOK)); v != base+1 {
		t.Fatalf("ok counter = %v, want %v", v, base+1)
	}
}

func TestGenerate_MalformedOutput(t *testing.T) {
	replies := []string{
		`{"advice":"x","confidence":0.8}`,
		`{}`,
		`I'm sorry, I can't help with that.`,
	}
	for _, r := range replies {
		reply := r
		g := newGen(t, ModelFunc(func(context.Context, Call) (string, error) { return reply, nil }), Options{MaxRetries: 3})
		out, err := g.Generate(context.Background(), adviceReq())
		if out != nil || !errors.Is(err, ErrMalformedOutput) {
			t.Fatalf("reply %q: expected ErrMalformedOutput and no data, got %v / %v", reply, out, err)
		}
		if errors.Is(err, ErrServiceUnavailable) {
			t.Fatalf("malformed output must not be reported as unavailable")
		}
	}
}

func TestGenerate_ServiceUnavailable_NoRetryByDefault(t *testing.T) {
	var calls int32
	m := ModelFunc(func(context.Context, Call) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", errors.New("connection reset by peer")
	})
	g := newGen(t, m, Options{})

	_, err := g.Generate(context.Background(), adviceReq())
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one model call, got %d", calls)
	}
}

func TestGenerate_Timeout(t *testing.T) {
	m := ModelFunc(func(ctx context.Context, _ Call) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	g := newGen(t, m, Options{Timeout: 20 * time.Millisecond})

	_, err := g.Generate(context.Background(), adviceReq())
	if !errors.Is(err, ErrServiceUnavailable) || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected timeout as ErrServiceUnavailable, got %v", err)
	}
}

func TestGenerate_RetriesOnlyUnavailable(t *testing.T) {
	var calls int32
	m := ModelFunc(func(context.Context, Call) (string, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return "", errors.New("503 service unavailable")
		}
		return `{"advice":"ok"}`, nil
	})
	g := newGen(t, m, Options{MaxRetries: 2})

	var waits []time.Duration
	g.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	if _, err := g.Generate(context.Background(), adviceReq()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if diff := cmp.Diff([]time.Duration{500 * time.Millisecond, time.Second}, waits); diff != "" {
		t.Fatalf("backoff mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_BackoffIsCapped(t *testing.T) {
	m := ModelFunc(func(context.Context, Call) (string, error) {
		return "", errors.New("connection reset")
	})
	g := newGen(t, m, Options{MaxRetries: 3, Backoff: time.Second, MaxBackoff: 3 * time.Second})

	var waits []time.Duration
	g.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	if _, err := g.Generate(context.Background(), adviceReq()); !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if diff := cmp.Diff([]time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, waits); diff != "" {
		t.Fatalf("backoff mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_CanceledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	m := ModelFunc(func(context.Context, Call) (string, error) {
		atomic.AddInt32(&calls, 1)
		cancel()
		return "", errors.New("boom")
	})
	g := newGen(t, m, Options{MaxRetries: 5})

	if _, err := g.Generate(ctx, adviceReq()); !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestGenerate_UnknownTemplateAndRenderFailure(t *testing.T) {
	called := false
	g := newGen(t, ModelFunc(func(context.Context, Call) (string, error) {
		called = true
		return "{}", nil
	}), Options{})

	if _, err := g.Generate(context.Background(), Request{TemplateID: "will-draft"}); err == nil {
		t.Fatalf("expected error for unknown template")
	}
	_, err := g.Generate(context.Background(), Request{TemplateID: schema.EBrief, Input: map[string]any{"caseId": "x"}})
	if !errors.Is(err, prompt.ErrRender) {
		t.Fatalf("expected render failure, got %v", err)
	}
	if called {
		t.Fatalf("model must not be called when the prompt cannot be rendered")
	}
}

func TestNewGenerator_Validation(t *testing.T) {
	if _, err := NewGenerator(nil, schema.MustRegistry(), prompt.MustLoad(), Options{}); err == nil {
		t.Fatalf("expected error for nil model")
	}
	if _, err := NewGenerator(Mock{}, schema.MustRegistry(), prompt.MustLoad(), Options{MaxRetries: -1}); err == nil {
		t.Fatalf("expected error for negative retries")
	}
	onlyAdvice, err := prompt.Parse([]byte("templates:\n  - id: legal-advice\n    system: s\n    user: u\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := NewGenerator(Mock{}, schema.MustRegistry(), onlyAdvice, Options{}); err == nil {
		t.Fatalf("expected error for missing prompt templates")
	}
	g, err := NewGenerator(Mock{}, schema.MustRegistry(), prompt.MustLoad(), Options{})
	if err != nil || g.timeout != DefaultTimeout || g.maxRetries != 0 {
		t.Fatalf("defaults not applied: %+v, %v", g, err)
	}
}
