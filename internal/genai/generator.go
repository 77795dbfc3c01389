// Package genai invokes the external generative model for a template.
//
// A Generator renders the template's prompt, makes one model call under a
// timeout, and validates the reply against the template's output contract.
// Failures are reported as exactly one of two kinds:
//
//   - ErrServiceUnavailable: network or provider failure, or the timeout
//     expired before a reply arrived.
//   - ErrMalformedOutput: a reply arrived but violates the output contract.
//
// Nothing is cached and nothing is defaulted. Retries are off unless
// MaxRetries is set, and only ErrServiceUnavailable is ever retried.
package genai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/legal-aid-backend/internal/observability"
	"github.com/tbourn/legal-aid-backend/internal/prompt"
	"github.com/tbourn/legal-aid-backend/internal/schema"
)

var (
	ErrServiceUnavailable = errors.New("generation service unavailable")
	ErrMalformedOutput    = errors.New("generation output malformed")
)

const (
	DefaultTimeout = 45 * time.Second

	defaultBackoff    = 500 * time.Millisecond
	defaultMaxBackoff = 5 * time.Second
)

// outcome label values
const (
	outcomeOK          = "ok"
	outcomeUnavailable = "unavailable"
	outcomeMalformed   = "malformed"
	outcomeError       = "error"
)

var (
	generations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genai_generations_total",
			Help: "Model generations by template and outcome.",
		},
		[]string{"template", "outcome"},
	)

	generationLat = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "genai_generation_duration_seconds",
			Help:    "Wall time of a generation including retries.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60, 90},
		},
		[]string{"template"},
	)
)

// Request is one structured generation request.
type Request struct {
	TemplateID string
	Input      map[string]any
	Language   string
	Provisions []string
}

// Options tunes a Generator. Zero values select defaults.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration // first retry delay, doubled per retry
	MaxBackoff time.Duration
}

// Generator is the generation invoker. It is safe for concurrent use.
type Generator struct {
	model     Model
	contracts *schema.Registry
	prompts   *prompt.Catalog

	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// NewGenerator wires a model to the contract registry and prompt catalog.
// Every contract must have a prompt template.
func NewGenerator(m Model, contracts *schema.Registry, prompts *prompt.Catalog, opts Options) (*Generator, error) {
	if m == nil {
		return nil, errors.New("genai: model is nil")
	}
	if contracts == nil || prompts == nil {
		return nil, errors.New("genai: contracts and prompts are required")
	}
	for _, id := range contracts.IDs() {
		if !prompts.Has(id) {
			return nil, fmt.Errorf("genai: no prompt template for %q", id)
		}
	}
	if opts.MaxRetries < 0 {
		return nil, errors.New("genai: MaxRetries must be >= 0")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	return &Generator{
		model:      m,
		contracts:  contracts,
		prompts:    prompts,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		maxBackoff: opts.MaxBackoff,
		sleep:      sleepCtx,
	}, nil
}

// Generate renders, calls the model and validates the reply. The input must
// already have passed the template's input contract.
func (g *Generator) Generate(ctx context.Context, req Request) (out map[string]any, err error) {
	tr := otel.Tracer("genai/Generator")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.String("genai.template", req.TemplateID),
			attribute.String("genai.language", req.Language),
			attribute.Int("genai.provisions", len(req.Provisions)),
		),
	)
	start := time.Now()
	defer func() {
		generations.WithLabelValues(req.TemplateID, outcomeOf(err)).Inc()
		generationLat.WithLabelValues(req.TemplateID).Observe(time.Since(start).Seconds())
		observability.Finish(span, err)
	}()

	contract, err := g.contracts.Get(req.TemplateID)
	if err != nil {
		return nil, err
	}
	p, err := g.prompts.Render(req.TemplateID, req.Input, prompt.RenderContext{
		Language:   req.Language,
		Provisions: req.Provisions,
	})
	if err != nil {
		return nil, err
	}
	call := Call{
		TemplateID:  req.TemplateID,
		Description: contract.Description,
		Prompt:      p,
		Schema:      contract.OutputSchema(),
	}

	var raw string
	for attempt := 0; ; attempt++ {
		raw, err = g.attempt(ctx, call)
		if err == nil {
			break
		}
		if attempt >= g.maxRetries || ctx.Err() != nil {
			return nil, err
		}
		wait := min(g.backoff<<attempt, g.maxBackoff)
		log.Warn().Err(err).Str("template", req.TemplateID).Int("attempt", attempt+1).
			Dur("backoff", wait).Msg("genai: retrying generation")
		if serr := g.sleep(ctx, wait); serr != nil {
			return nil, err
		}
	}
	span.SetAttributes(attribute.Int("genai.reply_bytes", len(raw)))

	out, verr := contract.ValidateOutput([]byte(raw))
	if verr != nil {
		log.Error().Err(verr).Str("template", req.TemplateID).Msg("genai: model reply violates output contract")
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, verr)
	}
	return out, nil
}

func (g *Generator) attempt(ctx context.Context, call Call) (string, error) {
	actx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.model.Complete(actx, call)
	if err != nil {
		if errors.Is(actx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: timed out after %s", ErrServiceUnavailable, g.timeout)
		}
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return raw, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrServiceUnavailable):
		return outcomeUnavailable
	case errors.Is(err, ErrMalformedOutput):
		return outcomeMalformed
	default:
		return outcomeError
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
