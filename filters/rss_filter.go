package filters

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/internal/logger"
	"github.com/AjianNie/TelegramForwarder2/rss"
)

// rssFilter 把消息落为 RSS 条目，失败只记录不影响转发
type rssFilter struct {
	sink EntrySink
}

func (f *rssFilter) Name() string { return "rss" }

func (f *rssFilter) Process(ctx context.Context, c *Context) (bool, error) {
	if !c.Rule.EnableRSS && !c.Rule.OnlyRSS {
		return true, nil
	}
	if rc := c.Rule.RSSConfig; rc != nil && !rc.Enabled {
		return true, nil
	}
	if f.sink == nil {
		logger.Warn("RSS enabled but no entry store configured",
			zap.Int64("rule_id", c.Rule.ID))
		return true, nil
	}

	msg := c.Message()
	entry := rss.NewEntry(c.Rule.ID, msg.ID)
	entry.Title = entryTitle(c)
	entry.Content = c.MessageText
	entry.Published = msg.Date
	entry.Author = c.SenderInfo
	if entry.Author == "" && msg.Sender != nil {
		entry.Author = msg.Sender.Name
	}
	entry.Link = c.OriginalLink
	if entry.Link == "" {
		entry.Link = originalLink(c.ChatID, msg.ID)
	}

	msgs := c.GroupMessages
	if len(msgs) == 0 {
		msgs = append(msgs, msg)
	}
	for _, m := range msgs {
		for _, media := range m.Media {
			entry.Media = append(entry.Media, rss.MediaRef{
				Kind: string(media.Kind),
				Name: media.Name,
				Size: media.Size,
			})
		}
	}

	if err := f.sink.Add(ctx, entry); err != nil {
		logger.Warn("Failed to record RSS entry",
			zap.Int64("rule_id", c.Rule.ID),
			zap.Int("message_id", msg.ID),
			zap.Error(err),
		)
	}
	return true, nil
}

// entryTitle 标题：模板优先，否则取正文首行
func entryTitle(c *Context) string {
	if rc := c.Rule.RSSConfig; rc != nil && rc.TitleTemplate != "" {
		first, _, _ := strings.Cut(c.MessageText, "\n")
		return strings.ReplaceAll(rc.TitleTemplate, "{title}", strings.TrimSpace(first))
	}
	first, _, _ := strings.Cut(c.MessageText, "\n")
	return strings.TrimSpace(first)
}
