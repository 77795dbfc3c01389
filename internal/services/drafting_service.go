// Package services – DraftingService
//
// This file implements the action wrappers for the four AI-assisted features
// (legal advice, eBrief, breach advisory plan, FIR draft). Each action takes
// the raw form fields and always returns exactly one of {data} or {error}:
//
//  1. a local pre-check of free-text length short-circuits with a fixed
//     message before any external call;
//  2. the input contract is validated (one error per field);
//  3. eBrief hydrates its input from the stored case;
//  4. the generation invoker is called in the session's language;
//  5. every failure, including a panic, becomes a plain user-facing string.
//
// Model output is returned unchanged.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/legal-aid-backend/internal/domain"
	"github.com/tbourn/legal-aid-backend/internal/genai"
	"github.com/tbourn/legal-aid-backend/internal/lawlib"
	"github.com/tbourn/legal-aid-backend/internal/schema"
	"github.com/tbourn/legal-aid-backend/internal/session"
)

// User-facing action messages.
const (
	MsgQueryTooShort    = "Please enter a query of at least 10 characters."
	MsgIncidentTooShort = "Please describe the incident in at least 20 characters."
	MsgCaseNotFound     = "Case not found."
	MsgCaseLoadFailed   = "Could not load the case. Please try again."
	MsgAdviceFailed     = "An unexpected error occurred while generating advice."
	MsgEBriefFailed     = "An unexpected error occurred while generating the eBrief."
	MsgFIRFailed        = "An unexpected error occurred while generating the FIR draft."
	MsgUnknownAction    = "This feature is not available."
)

// ActionResult is the outcome of an action: Data on success, Error otherwise.
// Exactly one of the two is set.
type ActionResult struct {
	Data  map[string]any `json:"data,omitempty"`
	Error string         `json:"error,omitempty"`
}

// OK reports whether the action produced data.
func (r ActionResult) OK() bool { return r.Error == "" }

func actionError(msg string) ActionResult { return ActionResult{Error: msg} }

// Generator is the generation invoker used by the actions.
type Generator interface {
	Generate(ctx context.Context, req genai.Request) (map[string]any, error)
}

// CaseReader loads cases for eBrief hydration. Visibility rules are the
// reader's responsibility.
type CaseReader interface {
	Get(ctx context.Context, id string) (*domain.Case, error)
}

// DraftingService runs the AI-assisted drafting actions.
type DraftingService struct {
	Contracts *schema.Registry
	Gen       Generator
	Cases     CaseReader

	// Library grounds legal advice with statutory provisions; nil disables it.
	Library      lawlib.Library
	LawTopK      int
	LawThreshold float64
}

// NewDraftingService wires the actions with default law-library settings.
func NewDraftingService(contracts *schema.Registry, gen Generator, cases CaseReader, lib lawlib.Library) *DraftingService {
	return &DraftingService{
		Contracts:    contracts,
		Gen:          gen,
		Cases:        cases,
		Library:      lib,
		LawTopK:      3,
		LawThreshold: 0.05,
	}
}

// Actions returns the template ids Run accepts.
func (s *DraftingService) Actions() []string { return s.Contracts.IDs() }

// Run dispatches to the action for templateID.
func (s *DraftingService) Run(ctx context.Context, templateID string, raw map[string]any) ActionResult {
	switch templateID {
	case schema.LegalAdvice:
		return s.LegalAdvice(ctx, raw)
	case schema.EBrief:
		return s.EBrief(ctx, raw)
	case schema.BreachAdvice:
		return s.BreachAdvice(ctx, raw)
	case schema.FIRDraft:
		return s.FIRDraft(ctx, raw)
	}
	return actionError(MsgUnknownAction)
}

// LegalAdvice answers a citizen's question, grounded with matching provisions
// from the law library.
func (s *DraftingService) LegalAdvice(ctx context.Context, raw map[string]any) ActionResult {
	return s.run(ctx, schema.LegalAdvice, MsgAdviceFailed, raw, func(ctx context.Context, in map[string]any) (map[string]any, []string, string) {
		if runeLen(in["query"]) < schema.MinQueryLen {
			return nil, nil, MsgQueryTooShort
		}
		q, _ := in["query"].(string)
		return in, lawlib.Cite(s.Library, q, s.LawTopK, s.LawThreshold), ""
	})
}

// EBrief prepares a case brief. The case is read first; its stored category,
// description and name take precedence over the submitted ones.
func (s *DraftingService) EBrief(ctx context.Context, raw map[string]any) ActionResult {
	return s.run(ctx, schema.EBrief, MsgEBriefFailed, raw, func(ctx context.Context, in map[string]any) (map[string]any, []string, string) {
		id, _ := in["caseId"].(string)
		id = strings.TrimSpace(id)
		if id == "" || s.Cases == nil {
			return nil, nil, MsgCaseNotFound
		}
		c, err := s.Cases.Get(ctx, id)
		switch {
		case errors.Is(err, ErrCaseNotFound):
			return nil, nil, MsgCaseNotFound
		case err != nil:
			log.Error().Err(err).Str("case_id", id).Msg("ebrief case lookup failed")
			return nil, nil, MsgCaseLoadFailed
		}
		out := make(map[string]any, len(in)+3)
		for k, v := range in {
			out[k] = v
		}
		out["caseId"] = c.ID
		out["caseCategory"] = string(c.Category)
		out["description"] = c.Description
		if name := strings.TrimSpace(c.FullName); name != "" {
			out["fullName"] = name
		}
		return out, nil, ""
	})
}

// BreachAdvice drafts a data-breach response plan.
func (s *DraftingService) BreachAdvice(ctx context.Context, raw map[string]any) ActionResult {
	return s.run(ctx, schema.BreachAdvice, MsgAdviceFailed, raw, incidentPrecheck)
}

// FIRDraft drafts a First Information Report for a cyber crime.
func (s *DraftingService) FIRDraft(ctx context.Context, raw map[string]any) ActionResult {
	return s.run(ctx, schema.FIRDraft, MsgFIRFailed, raw, incidentPrecheck)
}

func incidentPrecheck(_ context.Context, in map[string]any) (map[string]any, []string, string) {
	if runeLen(in["incidentDescription"]) < schema.MinIncidentDescLength {
		return nil, nil, MsgIncidentTooShort
	}
	return in, nil, ""
}

// prepareFunc runs before validation. It returns the input to validate, any
// provisions to cite, or a user message that ends the action.
type prepareFunc func(ctx context.Context, in map[string]any) (map[string]any, []string, string)

func (s *DraftingService) run(ctx context.Context, templateID, failMsg string, raw map[string]any, prepare prepareFunc) (res ActionResult) {
	sess := session.From(ctx)
	tr := otel.Tracer("services/DraftingService")
	ctx, span := tr.Start(ctx, "Action",
		trace.WithAttributes(
			attribute.String("template.id", templateID),
			attribute.String("user.id", sess.UserID),
			attribute.String("locale", sess.Lang()),
		),
	)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("template", templateID).Msg("action panicked")
			res = actionError(failMsg)
		}
		span.SetAttributes(attribute.Bool("action.ok", res.OK()))
		span.End()
	}()

	if raw == nil {
		raw = map[string]any{}
	}
	in, provisions, msg := prepare(ctx, raw)
	if msg != "" {
		return actionError(msg)
	}

	contract, err := s.Contracts.Get(templateID)
	if err != nil {
		log.Error().Err(err).Msg("action has no contract")
		return actionError(failMsg)
	}
	valid, verrs := contract.ValidateInput(in)
	if len(verrs) > 0 {
		return actionError(validationMessage(verrs))
	}

	out, err := s.Gen.Generate(ctx, genai.Request{
		TemplateID: templateID,
		Input:      valid,
		Language:   sess.Lang(),
		Provisions: provisions,
	})
	if err != nil {
		logGenerationFailure(ctx, templateID, err)
		return actionError(failMsg)
	}
	return ActionResult{Data: out}
}

func logGenerationFailure(ctx context.Context, templateID string, err error) {
	ev := log.Error()
	switch {
	case errors.Is(err, genai.ErrServiceUnavailable), errors.Is(ctx.Err(), context.Canceled):
		ev = log.Warn()
	case errors.Is(err, genai.ErrMalformedOutput):
		// already logged with the violation by the generator
		ev = log.Debug()
	}
	ev.Err(err).Str("template", templateID).Msg("generation failed")
}

// validationMessage renders field errors as one sentence for display.
func validationMessage(errs schema.ValidationErrors) string {
	parts := make([]string, len(errs))
	for i, fe := range errs {
		parts[i] = fe.Error()
	}
	return fmt.Sprintf("Please correct the following: %s.", strings.Join(parts, "; "))
}

func runeLen(v any) int {
	s, _ := v.(string)
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
