package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Mock is an offline Model for local development. It never calls out and
// answers with a placeholder document shaped by call.Schema, so replies pass
// output validation.
type Mock struct{}

func (Mock) Complete(ctx context.Context, call Call) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	doc := mockValue(call.TemplateID, "", call.Schema)
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func mockValue(templateID, name string, s map[string]any) any {
	desc, _ := s["description"].(string)
	if desc == "" {
		desc = name
	}
	switch s["type"] {
	case "object":
		props, _ := s["properties"].(map[string]any)
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(keys))
		for _, k := range keys {
			ps, _ := props[k].(map[string]any)
			out[k] = mockValue(templateID, k, ps)
		}
		return out
	case "array":
		items, _ := s["items"].(map[string]any)
		return []any{
			mockValue(templateID, name+" 1", items),
			mockValue(templateID, name+" 2", items),
		}
	case "boolean":
		return false
	case "integer", "number":
		return 0
	default:
		if vals, ok := s["enum"].([]any); ok && len(vals) > 0 {
			return vals[0]
		}
		return fmt.Sprintf("[offline %s draft] %s", templateID, desc)
	}
}
