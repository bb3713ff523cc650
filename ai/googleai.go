package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// GoogleAIProvider Google AI (Gemini) 提供商
type GoogleAIProvider struct {
	llm   llms.Model
	model string
}

// NewGoogleAIProvider 创建 Google AI 提供商
func NewGoogleAIProvider(ctx context.Context, apiKey, model string) (*GoogleAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = "gemini-1.5-pro"
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, err
	}

	return &GoogleAIProvider{llm: llm, model: model}, nil
}

// Rewrite 改写文本
func (p *GoogleAIProvider) Rewrite(ctx context.Context, prompt, text string, images []string) (string, error) {
	return generate(ctx, p.llm, prompt, text, images)
}
