package filters

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/chat"
	"github.com/AjianNie/TelegramForwarder2/internal/logger"
	"github.com/AjianNie/TelegramForwarder2/storage"
)

// senderFilter 向目标会话发送最终消息，是管道的主终端阶段
type senderFilter struct {
	limiter Limiter
}

func (f *senderFilter) Name() string { return "sender" }

func (f *senderFilter) Process(ctx context.Context, c *Context) (bool, error) {
	if !c.ShouldForward || c.Rule.EnableOnlyPush || c.Rule.OnlyRSS {
		return true, nil
	}

	text := c.FinalText()
	parseMode := string(c.Rule.MessageMode)

	if len(c.MediaFiles) == 0 && text == "" {
		return true, nil
	}

	if err := f.limiter.AcquireRetry(ctx); err != nil {
		c.Failed = true
		return false, err
	}

	var sent []chat.SentMessage
	var err error
	switch {
	case len(c.MediaFiles) == 0:
		sent, err = c.Client.Send(ctx, chat.SendRequest{
			ChatID:         c.Rule.TargetChatID,
			Text:           text,
			ParseMode:      parseMode,
			DisablePreview: c.Rule.PreviewMode == storage.PreviewModeOff,
			Buttons:        c.Buttons,
		})

	case len(c.MediaFiles) == 1 && !c.IsMediaGroup:
		sent, err = c.Client.SendFile(ctx, c.Rule.TargetChatID, text, parseMode, c.MediaFiles[0], c.Buttons)

	default:
		sent, err = c.Client.SendMediaGroup(ctx, c.Rule.TargetChatID, text, parseMode, c.MediaFiles)
	}

	if err != nil {
		c.Failed = true
		return false, fmt.Errorf("forward to %d: %w", c.Rule.TargetChatID, err)
	}
	c.ForwardedMessages = append(c.ForwardedMessages, sent...)

	logger.Info("Message forwarded",
		zap.Int64("rule_id", c.Rule.ID),
		zap.Int64("target_chat_id", c.Rule.TargetChatID),
		zap.Int("media_files", len(c.MediaFiles)),
	)

	// 推送阶段还要用这批文件，只有不推送时才在这里清理
	if !c.Rule.EnablePush {
		removeFiles(c.MediaFiles)
		c.MediaFiles = nil
	}
	return true, nil
}

func removeFiles(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove media file",
				zap.String("path", p), zap.Error(err))
		}
	}
}
