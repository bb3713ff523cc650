package filters

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/chat"
	"github.com/AjianNie/TelegramForwarder2/internal/logger"
)

const (
	// 给平台时间把频道消息同步到关联讨论群
	commentSettleDelay = 2 * time.Second
	// 讨论群里参与匹配的最近消息数
	commentCandidates = 5
	// 文本前缀相似度阈值
	commentSimilarityThreshold = 0.75
	commentPrefixLen           = 20
	// 时间邻近匹配窗口
	commentTimeWindow = time.Minute
)

// commentButtonFilter 为广播频道消息生成跳转评论区的按钮。
// 讨论群消息匹配优先级：文本完全一致 → 前缀相似度 → 时间邻近 → 最新一条。
type commentButtonFilter struct {
	limiter Limiter
	// 测试钩子，生产环境为空
	sleep func(ctx context.Context, d time.Duration) error
}

func (f *commentButtonFilter) Name() string { return "comment_button" }

func (f *commentButtonFilter) Process(ctx context.Context, c *Context) (bool, error) {
	// 只出 RSS 的规则不转发，也就不需要评论入口
	if !c.Rule.EnableCommentButton || c.Rule.OnlyRSS {
		return true, nil
	}
	msg := c.Message()
	if msg.Text == "" && len(msg.Media) == 0 {
		return true, nil
	}

	if err := f.limiter.AcquireRetry(ctx); err != nil {
		return true, err
	}
	entity, err := c.Client.GetChat(ctx, c.ChatID)
	if err != nil {
		return true, fmt.Errorf("get chat: %w", err)
	}
	if !entity.IsBroadcast {
		return true, nil
	}

	// 媒体组用最小 ID 的消息作为评论入口
	postID := msg.ID
	if c.IsMediaGroup {
		group := c.GroupMessages
		if len(group) == 0 {
			group, err = resolveGroup(ctx, c.Client, c.ChatID, msg)
			if err != nil {
				c.AddError(f.Name(), err)
			}
			c.GroupMessages = group
		}
		if rep := representative(group); rep != nil {
			postID = rep.ID
		}
	}

	base := channelBaseLink(entity)
	link := fmt.Sprintf("%s/%d?comment=1", base, postID)

	if entity.LinkedChatID != 0 {
		if id, ok := f.matchDiscussionMessage(ctx, c, entity.LinkedChatID); ok {
			link = fmt.Sprintf("%s/%d?comment=%d", base, postID, id)
		}
	}
	c.CommentLink = link

	// 媒体组无法在发送时带按钮，留给回复阶段补挂
	if !c.IsMediaGroup {
		row := []chat.Button{{Text: "💬 查看评论", URL: link}}
		c.Buttons = append([][]chat.Button{row}, c.Buttons...)
	}
	return true, nil
}

// matchDiscussionMessage 在关联讨论群最近消息里定位本条消息的讨论副本
func (f *commentButtonFilter) matchDiscussionMessage(ctx context.Context, c *Context, linkedChatID int64) (int, bool) {
	if err := f.wait(ctx, commentSettleDelay); err != nil {
		return 0, false
	}

	if err := f.limiter.AcquireRetry(ctx); err != nil {
		c.AddError(f.Name(), err)
		return 0, false
	}
	recent, err := c.Client.ListRecent(ctx, linkedChatID, commentCandidates)
	if err != nil {
		c.AddError(f.Name(), fmt.Errorf("list discussion messages: %w", err))
		return 0, false
	}
	if len(recent) == 0 {
		return 0, false
	}

	text := c.OriginalText
	// 1. 文本完全一致
	for _, m := range recent {
		if m.Text != "" && m.Text == text {
			return m.ID, true
		}
	}

	// 2. 前 20 个字符相似度超过阈值
	if text != "" {
		want := prefixRunes(text, commentPrefixLen)
		for _, m := range recent {
			got := prefixRunes(m.Text, commentPrefixLen)
			if got == "" {
				continue
			}
			if similarityRatio(want, got) > commentSimilarityThreshold {
				return m.ID, true
			}
		}
	}

	// 3. 时间邻近
	date := c.Message().Date
	for _, m := range recent {
		if delta := m.Date.Sub(date); math.Abs(delta.Seconds()) < commentTimeWindow.Seconds() {
			return m.ID, true
		}
	}

	// 4. 兜底取最新一条
	newest := recent[0]
	for _, m := range recent[1:] {
		if m.ID > newest.ID {
			newest = m
		}
	}
	logger.Debug("Comment match fell back to newest discussion message",
		zap.Int64("linked_chat_id", linkedChatID),
		zap.Int("message_id", newest.ID),
	)
	return newest.ID, true
}

func (f *commentButtonFilter) wait(ctx context.Context, d time.Duration) error {
	if f.sleep != nil {
		return f.sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// channelBaseLink 公开频道用用户名，私有频道用 c/<id> 形式
func channelBaseLink(entity *chat.Entity) string {
	if entity.Username != "" {
		return "https://t.me/" + entity.Username
	}
	id := strconv.FormatInt(entity.ID, 10)
	id = strings.TrimPrefix(id, "-100")
	id = strings.TrimPrefix(id, "-")
	return "https://t.me/c/" + id
}
