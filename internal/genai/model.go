package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tbourn/legal-aid-backend/internal/prompt"
)

// Call is one request to a model: a rendered prompt plus the JSON Schema the
// reply must conform to.
type Call struct {
	TemplateID  string
	Description string
	Prompt      prompt.Prompt
	Schema      map[string]any
}

// Model abstracts a generative model provider so it can be swapped or mocked.
// Complete returns the raw reply text; callers validate it.
type Model interface {
	Complete(ctx context.Context, call Call) (string, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, call Call) (string, error)

func (f ModelFunc) Complete(ctx context.Context, call Call) (string, error) { return f(ctx, call) }

// Settings selects and configures a provider.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// NewModel builds the provider named by s.Provider ("openai" or "mock").
func NewModel(s Settings) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "openai":
		return NewOpenAIModel(s)
	case "mock", "":
		return Mock{}, nil
	default:
		return nil, fmt.Errorf("genai: unsupported provider %q", s.Provider)
	}
}

var errEmptyReply = errors.New("model returned no choices")
