package filters

import (
	"context"

	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/internal/logger"
)

// deleteWindow 媒体组未解析成功时删除的 ID 范围半径
const deleteWindow = 10

// deleteOriginalFilter 转发完成后删除源消息，失败只记录
type deleteOriginalFilter struct {
	limiter Limiter
}

func (f *deleteOriginalFilter) Name() string { return "delete_original" }

func (f *deleteOriginalFilter) Process(ctx context.Context, c *Context) (bool, error) {
	if !c.Rule.IsDeleteOriginal {
		return true, nil
	}

	msg := c.Message()
	var ids []int
	switch {
	case len(c.GroupMessages) > 0:
		for _, m := range c.GroupMessages {
			ids = append(ids, m.ID)
		}
	case c.IsMediaGroup:
		// 组成员未知，删除附近一个有界窗口
		for id := msg.ID - deleteWindow; id <= msg.ID+deleteWindow; id++ {
			if id > 0 {
				ids = append(ids, id)
			}
		}
	default:
		ids = []int{msg.ID}
	}

	if err := f.limiter.AcquireRetry(ctx); err != nil {
		logger.Warn("Skipped source deletion, no rate token",
			zap.Int64("rule_id", c.Rule.ID), zap.Error(err))
		return true, nil
	}
	if err := c.Client.Delete(ctx, c.ChatID, ids); err != nil {
		logger.Warn("Failed to delete source messages",
			zap.Int64("rule_id", c.Rule.ID),
			zap.Int64("chat_id", c.ChatID),
			zap.Ints("message_ids", ids),
			zap.Error(err),
		)
	}
	return true, nil
}
