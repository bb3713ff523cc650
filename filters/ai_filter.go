package filters

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/internal/logger"
)

// aiFilter 用 AI 改写文本；失败时以错误提示文本继续，不中断转发
type aiFilter struct {
	provider      Provider
	defaultPrompt string
}

// Provider AI 改写提供商
type Provider interface {
	Rewrite(ctx context.Context, prompt, text string, images []string) (string, error)
}

func (f *aiFilter) Name() string { return "ai" }

func (f *aiFilter) Process(ctx context.Context, c *Context) (bool, error) {
	if !c.Rule.EnableAI {
		return true, nil
	}
	if f.provider == nil {
		c.MessageText = "AI 处理失败: provider not configured"
		return true, nil
	}

	prompt := c.Rule.AIPrompt
	if prompt == "" {
		prompt = f.defaultPrompt
	}

	out, err := f.provider.Rewrite(ctx, prompt, c.MessageText, c.MediaFiles)
	if err != nil {
		logger.Warn("AI rewrite failed",
			zap.Int64("rule_id", c.Rule.ID),
			zap.Error(err),
		)
		c.MessageText = fmt.Sprintf("AI 处理失败: %v", err)
		return true, nil
	}

	c.MessageText = out
	return true, nil
}
