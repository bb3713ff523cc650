package filters

import (
	"context"
	"fmt"

	"github.com/AjianNie/TelegramForwarder2/storage"
)

// editFilter 编辑模式：原地更新源消息，不再走发送阶段
type editFilter struct {
	limiter Limiter
}

func (f *editFilter) Name() string { return "edit" }

func (f *editFilter) Process(ctx context.Context, c *Context) (bool, error) {
	if c.Rule.HandleMode != storage.HandleModeEdit {
		return true, nil
	}
	if !c.ShouldForward {
		return false, nil
	}

	if err := f.limiter.AcquireRetry(ctx); err != nil {
		return false, err
	}

	msg := c.Message()
	err := c.Client.EditText(ctx, c.ChatID, msg.ID, c.FinalText(), string(c.Rule.MessageMode), c.Buttons)
	if err != nil {
		return false, fmt.Errorf("edit message: %w", err)
	}
	return false, nil
}
