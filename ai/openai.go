package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIProvider OpenAI 提供商，也兼容任何 OpenAI 协议的服务
type OpenAIProvider struct {
	llm   llms.Model
	model string
}

// NewOpenAIProvider 创建 OpenAI 提供商
func NewOpenAIProvider(apiKey, baseURL, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = "gpt-4o"
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}

	return &OpenAIProvider{llm: llm, model: model}, nil
}

// Rewrite 改写文本
func (p *OpenAIProvider) Rewrite(ctx context.Context, prompt, text string, images []string) (string, error) {
	return generate(ctx, p.llm, prompt, text, images)
}
