package genai

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIModel implements Model with the official openai-go SDK, requesting
// strict JSON-schema structured output. One client serves every call.
type OpenAIModel struct {
	Model string
	Opts  []option.RequestOption

	client openai.Client
}

// NewOpenAIModel validates s and builds the client. SDK retries are
// disabled; the Generator owns the retry policy.
func NewOpenAIModel(s Settings) (*OpenAIModel, error) {
	if s.APIKey == "" {
		return nil, errors.New("openai api key missing; set GENAI_API_KEY")
	}
	if s.Model == "" {
		return nil, errors.New("genai model is required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithMaxRetries(0),
	}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	return &OpenAIModel{Model: s.Model, Opts: opts, client: openai.NewClient(opts...)}, nil
}

func (o *OpenAIModel) Complete(ctx context.Context, call Call) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(call.Prompt.System),
			openai.UserMessage(call.Prompt.User),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        schemaName(call.TemplateID),
					Description: openai.String(call.Description),
					Schema:      call.Schema,
					Strict:      openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}

// schemaName maps a template id onto the provider's name charset
// ([a-zA-Z0-9_-], at most 64 characters).
func schemaName(id string) string {
	b := make([]byte, 0, len(id))
	for i := 0; i < len(id) && len(b) < 64; i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			b = append(b, c)
		default:
			b = append(b, '_')
		}
	}
	if len(b) == 0 {
		return "response"
	}
	return string(b)
}
