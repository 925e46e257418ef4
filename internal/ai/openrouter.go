package ai

import (
	"context"
	"strings"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

type openRouterConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

// openRouterProvider wraps the OpenAI-compatible transport with the
// openrouter endpoint. OpenRouter does not serve embeddings.
type openRouterProvider struct {
	inner *openAIProvider
}

func (p *openRouterProvider) Name() string {
	return "openrouter"
}

func (p *openRouterProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	return p.inner.Generate(ctx, model, prompt)
}

func (p *openRouterProvider) Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error) {
	return nil, ErrUnavailable
}

func createOpenRouterFactory(args interface{}) (IProvider, error) {
	cfg := &openRouterConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	return &openRouterProvider{
		inner: &openAIProvider{
			apiKey:  strings.TrimSpace(cfg.APIKey),
			baseURL: baseURL,
		},
	}, nil
}

func init() {
	Register("openrouter", createOpenRouterFactory)
}
