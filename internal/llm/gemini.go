package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/akolanti/lexintake/internal/domain/docModel"
	"github.com/akolanti/lexintake/pkg/logger_i"
)

var geminiLog = logger_i.NewLogger("llm.gemini")

type geminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider builds the default backend. The API key comes from the
// environment; construction fails fast so the run aborts before any files
// move.
func NewGeminiProvider(ctx context.Context, apiKey string) (Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &geminiProvider{client: client}, nil
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	contents := genai.Text(req.Prompt)
	if req.Image != nil {
		parts := []*genai.Part{
			genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType),
			genai.NewPartFromText(req.Prompt),
		}
		contents = []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	}

	result, err := p.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		if IsTransient(err) {
			return nil, markTransient(fmt.Errorf("gemini generate: %w", err))
		}
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini returned empty response for model %s", req.Model)
	}

	resp := &Response{Text: text}
	if result.UsageMetadata != nil {
		resp.Usage = docModel.TokenUsage{
			Calls:        1,
			InputTokens:  int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(result.UsageMetadata.CandidatesTokenCount),
		}
		geminiLog.Debug("token usage",
			"model", req.Model,
			"input", resp.Usage.InputTokens,
			"output", resp.Usage.OutputTokens)
	}
	return resp, nil
}
