package filters

import (
	"context"

	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/chat"
	"github.com/AjianNie/TelegramForwarder2/internal/logger"
)

// replyFilter 媒体组发送后补挂按钮。
// 相册在发送时带不了按钮，这里对第一条已转发消息做编辑，尽力而为。
// 有评论链接挂评论按钮；否则规则开了回链且有原文链接时挂原文按钮。
type replyFilter struct {
	limiter Limiter
}

func (f *replyFilter) Name() string { return "reply" }

func (f *replyFilter) Process(ctx context.Context, c *Context) (bool, error) {
	if !c.IsMediaGroup || len(c.ForwardedMessages) == 0 {
		return true, nil
	}

	var row []chat.Button
	switch {
	case c.CommentLink != "":
		row = []chat.Button{{Text: "💬 查看评论", URL: c.CommentLink}}
	case c.Rule.EnableReplyLink:
		// 按钮要裸链接，不能用套了模板的 OriginalLink
		row = []chat.Button{{Text: "🔗 原文", URL: originalLink(c.ChatID, c.Message().ID)}}
	default:
		return true, nil
	}

	rep := c.ForwardedMessages[0]
	buttons := append([][]chat.Button{row}, c.Buttons...)

	if err := f.limiter.AcquireRetry(ctx); err != nil {
		return true, err
	}
	if err := c.Client.EditButtons(ctx, rep.ChatID, rep.ID, buttons); err != nil {
		logger.Warn("Failed to attach buttons to album",
			zap.Int64("rule_id", c.Rule.ID),
			zap.Int("message_id", rep.ID),
			zap.Error(err),
		)
	}
	return true, nil
}
