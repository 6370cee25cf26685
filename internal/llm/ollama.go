package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"
)

// OllamaProvider generates answers with a local Ollama server.
type OllamaProvider struct {
	client *api.Client
	model  string
	log    zerolog.Logger
}

// NewOllamaProvider connects to host, or to OLLAMA_HOST when host is empty.
func NewOllamaProvider(host, model string, logger zerolog.Logger) (*OllamaProvider, error) {
	var client *api.Client
	if host == "" {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client from environment: %w", err)
		}
		client = c
	} else {
		parsed, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host: %w", err)
		}
		client = api.NewClient(parsed, http.DefaultClient)
	}

	logger.Info().Str("host", host).Str("model", model).Msg("initialized ollama provider")
	return &OllamaProvider{client: client, model: model, log: logger}, nil
}

// Generate sends prompt as a single non-streaming generate request.
// The reply carries Ollama's flat response text.
func (p *OllamaProvider) Generate(ctx context.Context, prompt string, opts GenerateOptions) (*Reply, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:   p.model,
		Prompt:  prompt,
		Stream:  &stream,
		Options: map[string]interface{}{},
	}
	if opts.MaxOutputTokens > 0 {
		req.Options["num_predict"] = opts.MaxOutputTokens
	}
	if opts.Temperature != nil {
		req.Options["temperature"] = *opts.Temperature
	}

	var resp api.GenerateResponse
	err := p.client.Generate(ctx, req, func(r api.GenerateResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		return nil, classifyOllama(err)
	}

	text := resp.Response
	return &Reply{Text: &text, Model: resp.Model}, nil
}

func (p *OllamaProvider) Close() error {
	return nil
}

func classifyOllama(err error) error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return tag(kindForHTTPStatus(statusErr.StatusCode), err)
	}
	return classifyCommon(err)
}

var _ Generator = (*OllamaProvider)(nil)
