package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/akolanti/lexintake/internal/domain/docModel"
)

// ErrVisionUnsupported is returned when an image request reaches a backend
// configured without vision. Image extraction then records a failure
// instead of producing a text-only description.
var ErrVisionUnsupported = errors.New("vision not supported by this backend")

type openAIProvider struct {
	client openai.Client
}

// NewOpenAIProvider builds the alternate backend, selected through the llm
// backend key in settings.json.
func NewOpenAIProvider(apiKey string) Provider {
	return &openAIProvider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}
}

func (p *openAIProvider) Name() string { return "openai" }

func (p *openAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.Image != nil {
		return nil, ErrVisionUnsupported
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(float64(req.Temperature)),
	})
	if err != nil {
		if IsTransient(err) {
			return nil, markTransient(fmt.Errorf("openai completion: %w", err))
		}
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices for model %s", req.Model)
	}

	return &Response{
		Text: completion.Choices[0].Message.Content,
		Usage: docModel.TokenUsage{
			Calls:        1,
			InputTokens:  completion.Usage.PromptTokens,
			OutputTokens: completion.Usage.CompletionTokens,
		},
	}, nil
}
