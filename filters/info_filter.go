package filters

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// infoFilter 生成发送者信息、时间信息和原文链接，三项互相隔离
type infoFilter struct {
	limiter  Limiter
	location *time.Location
}

func (f *infoFilter) Name() string { return "info" }

func (f *infoFilter) Process(ctx context.Context, c *Context) (bool, error) {
	msg := c.Message()

	if c.Rule.IsOriginalSender {
		name, id, err := f.senderIdentity(ctx, c)
		if err != nil {
			c.AddError(f.Name(), fmt.Errorf("sender info: %w", err))
		} else {
			tpl := c.Rule.UserInfoTemplate
			if tpl == "" {
				tpl = "{name}"
			}
			out := strings.ReplaceAll(tpl, "{name}", name)
			out = strings.ReplaceAll(out, "{id}", strconv.FormatInt(id, 10))
			c.SenderInfo = out
		}
	}

	if c.Rule.IsOriginalTime {
		tpl := c.Rule.TimeTemplate
		if tpl == "" {
			tpl = "{time}"
		}
		stamp := msg.Date.In(f.location).Format("2006-01-02 15:04:05")
		c.TimeInfo = strings.ReplaceAll(tpl, "{time}", stamp)
	}

	if c.Rule.IsOriginalLink {
		tpl := c.Rule.LinkTemplate
		if tpl == "" {
			tpl = "原始消息: {original_link}"
		}
		link := originalLink(c.ChatID, msg.ID)
		c.OriginalLink = strings.ReplaceAll(tpl, "{original_link}", link)
	}

	return true, nil
}

// senderIdentity 优先使用消息自带的发送者，缺失时回查会话元数据
func (f *infoFilter) senderIdentity(ctx context.Context, c *Context) (string, int64, error) {
	if s := c.Message().Sender; s != nil && s.Name != "" {
		return s.Name, s.ID, nil
	}

	if err := f.limiter.AcquireRetry(ctx); err != nil {
		return "", 0, err
	}
	entity, err := c.Client.GetChat(ctx, c.ChatID)
	if err != nil {
		return "", 0, err
	}
	return entity.Title, entity.ID, nil
}

// originalLink 私有频道消息链接，去掉 -100 前缀
func originalLink(chatID int64, messageID int) string {
	id := strconv.FormatInt(chatID, 10)
	id = strings.TrimPrefix(id, "-100")
	id = strings.TrimPrefix(id, "-")
	return fmt.Sprintf("https://t.me/c/%s/%d", id, messageID)
}
