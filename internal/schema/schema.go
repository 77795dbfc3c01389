// Package schema declares the input and output contracts of every structured
// generation template and validates payloads against them.
//
// Each Contract pairs two JSON Schema documents:
//   - Input: what a citizen must supply (required fields, enums, minimum
//     lengths). Validation returns one FieldError per violated field.
//   - Output: the exact shape the model must return. Every declared field is
//     required and unknown fields are rejected; a mismatch is a Violation.
//
// Output documents are also handed to the model provider as the structured
// output format, so the contract the model is asked for and the contract the
// reply is checked against are the same value.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrSchemaViolation is the sentinel wrapped by every Violation.
var ErrSchemaViolation = errors.New("output schema violation")

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + " " + e.Message }

// ValidationErrors is the set of per-field input errors, ordered by field.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Error()
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Fields returns the names of the rejected fields.
func (v ValidationErrors) Fields() []string {
	out := make([]string, len(v))
	for i, fe := range v {
		out[i] = fe.Field
	}
	return out
}

// Violation reports that a model reply did not match the output contract.
type Violation struct {
	Template string
	Details  []string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrSchemaViolation, v.Template, strings.Join(v.Details, "; "))
}

func (v *Violation) Unwrap() error { return ErrSchemaViolation }

// Contract binds a template id to its compiled input and output schemas.
type Contract struct {
	ID          string
	Description string

	inputDoc  map[string]any
	outputDoc map[string]any
	input     *gojsonschema.Schema
	output    *gojsonschema.Schema
	fields    map[string]struct{}
}

func newContract(id, description string, input, output map[string]any) (*Contract, error) {
	in, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, fmt.Errorf("schema %s input: %w", id, err)
	}
	out, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(output))
	if err != nil {
		return nil, fmt.Errorf("schema %s output: %w", id, err)
	}
	fields := map[string]struct{}{}
	if props, ok := input["properties"].(map[string]any); ok {
		for k := range props {
			fields[k] = struct{}{}
		}
	}
	return &Contract{
		ID:          id,
		Description: description,
		inputDoc:    input,
		outputDoc:   output,
		input:       in,
		output:      out,
		fields:      fields,
	}, nil
}

// OutputSchema returns a copy of the output JSON Schema document.
func (c *Contract) OutputSchema() map[string]any { return deepCopy(c.outputDoc) }

// InputSchema returns a copy of the input JSON Schema document.
func (c *Contract) InputSchema() map[string]any { return deepCopy(c.inputDoc) }

// ValidateInput normalizes raw (trims strings, drops blank strings and fields
// the contract does not declare) and checks it against the input schema.
// On success it returns the normalized input; otherwise one FieldError per
// violated field.
func (c *Contract) ValidateInput(raw map[string]any) (map[string]any, ValidationErrors) {
	in := make(map[string]any, len(raw))
	for k, v := range raw {
		if _, known := c.fields[k]; !known {
			continue
		}
		switch t := v.(type) {
		case nil:
			continue
		case string:
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			in[k] = t
		default:
			in[k] = v
		}
	}

	res, err := c.input.Validate(gojsonschema.NewGoLoader(in))
	if err != nil {
		return nil, ValidationErrors{{Field: "(root)", Rule: "decode", Message: err.Error()}}
	}
	if res.Valid() {
		return in, nil
	}

	seen := map[string]bool{}
	var errs ValidationErrors
	for _, re := range res.Errors() {
		fe := toFieldError(re)
		if seen[fe.Field] {
			continue
		}
		seen[fe.Field] = true
		errs = append(errs, fe)
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return nil, errs
}

// ValidateOutput decodes a model reply and checks it against the output
// schema. Any mismatch (missing field, wrong type, extra field, non-object
// payload, invalid JSON) is reported as a *Violation.
func (c *Contract) ValidateOutput(raw []byte) (map[string]any, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &Violation{Template: c.ID, Details: []string{"reply is not valid JSON"}}
	}
	res, err := c.output.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, &Violation{Template: c.ID, Details: []string{err.Error()}}
	}
	if !res.Valid() {
		details := make([]string, 0, len(res.Errors()))
		for _, re := range res.Errors() {
			details = append(details, re.String())
		}
		sort.Strings(details)
		return nil, &Violation{Template: c.ID, Details: details}
	}
	out, _ := doc.(map[string]any)
	return out, nil
}

func toFieldError(re gojsonschema.ResultError) FieldError {
	field := re.Field()
	if p, ok := re.Details()["property"].(string); ok && p != "" {
		field = p
	}
	if i := strings.IndexByte(field, '.'); i > 0 {
		field = field[:i]
	}

	fe := FieldError{Field: field, Rule: re.Type()}
	switch re.Type() {
	case "required":
		fe.Message = "is required"
	case "enum":
		fe.Message = "must be one of: " + fmt.Sprint(re.Details()["allowed"])
	case "string_gte":
		fe.Rule = "min_length"
		fe.Message = fmt.Sprintf("must be at least %v characters", re.Details()["min"])
	case "invalid_type":
		fe.Message = fmt.Sprintf("must be a %v", re.Details()["expected"])
	default:
		fe.Message = re.Description()
	}
	return fe
}

func deepCopy(doc map[string]any) map[string]any {
	b, _ := json.Marshal(doc)
	var out map[string]any
	_ = json.Unmarshal(b, &out)
	return out
}
