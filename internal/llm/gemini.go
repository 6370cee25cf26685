package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiProvider generates answers with the hosted Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// NewGeminiProvider creates an API-key authenticated Gemini client.
func NewGeminiProvider(ctx context.Context, apiKey, model string, logger zerolog.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.Info().Str("model", model).Msg("initialized gemini provider")
	return &GeminiProvider{client: client, model: model, log: logger}, nil
}

// Generate sends prompt as a single-turn request. Gemini has no flat text field,
// so the reply carries candidates only.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string, opts GenerateOptions) (*Reply, error) {
	model := p.client.GenerativeModel(p.model)
	if opts.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxOutputTokens)
	}
	if opts.Temperature != nil {
		model.SetTemperature(*opts.Temperature)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, classifyGemini(err)
	}
	return replyFromGemini(resp, p.model), nil
}

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func replyFromGemini(resp *genai.GenerateContentResponse, model string) *Reply {
	reply := &Reply{Model: model}
	if resp == nil {
		return reply
	}
	for _, c := range resp.Candidates {
		if c == nil {
			continue
		}
		cand := Candidate{FinishReason: c.FinishReason.String()}
		if c.Content != nil {
			content := &Content{Role: c.Content.Role}
			for _, part := range c.Content.Parts {
				switch v := part.(type) {
				case genai.Text:
					content.Parts = append(content.Parts, TextPart(string(v)))
				case genai.Blob:
					content.Parts = append(content.Parts, Part{MIMEType: v.MIMEType})
				default:
					content.Parts = append(content.Parts, Part{})
				}
			}
			cand.Content = content
		}
		reply.Candidates = append(reply.Candidates, cand)
	}
	return reply
}

func classifyGemini(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return tag(ErrBlocked, err)
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if kind := kindForHTTPStatus(apiErr.HTTPCode()); kind != nil {
			return tag(kind, err)
		}
		if kind := kindForGRPCCode(apiErr.GRPCStatus().Code()); kind != nil {
			return tag(kind, err)
		}
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		if kind := kindForHTTPStatus(gErr.Code); kind != nil {
			return tag(kind, err)
		}
	}

	return classifyCommon(err)
}

var _ Generator = (*GeminiProvider)(nil)
