package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

// AnthropicProvider Anthropic (Claude) 提供商
type AnthropicProvider struct {
	llm   llms.Model
	model string
}

// NewAnthropicProvider 创建 Anthropic 提供商
func NewAnthropicProvider(apiKey, baseURL, model string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}

	opts := []anthropic.Option{
		anthropic.WithToken(apiKey),
		anthropic.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}

	llm, err := anthropic.New(opts...)
	if err != nil {
		return nil, err
	}

	return &AnthropicProvider{llm: llm, model: model}, nil
}

// Rewrite 改写文本
func (p *AnthropicProvider) Rewrite(ctx context.Context, prompt, text string, images []string) (string, error) {
	return generate(ctx, p.llm, prompt, text, images)
}
