package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/AjianNie/TelegramForwarder2/config"
)

// NewProvider 按模型名选择提供商，返回带断路器保护的实例。
// claude* 走 Anthropic，gemini* 走 Google AI，其余都按 OpenAI 协议处理。
func NewProvider(ctx context.Context, cfg *config.AIConfig, model string) (Provider, error) {
	if model == "" {
		model = cfg.DefaultModel
	}

	var (
		inner Provider
		err   error
	)
	switch {
	case strings.HasPrefix(model, "claude"):
		inner, err = NewAnthropicProvider(cfg.Anthropic.APIKey, cfg.Anthropic.BaseURL, model)
	case strings.HasPrefix(model, "gemini"):
		inner, err = NewGoogleAIProvider(ctx, cfg.GoogleAI.APIKey, model)
	default:
		inner, err = NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, model)
	}
	if err != nil {
		return nil, fmt.Errorf("create provider for model %s: %w", model, err)
	}

	return NewGuarded(inner), nil
}
