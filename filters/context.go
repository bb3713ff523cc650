package filters

import (
	"fmt"
	"strings"

	"github.com/AjianNie/TelegramForwarder2/chat"
	"github.com/AjianNie/TelegramForwarder2/storage"
)

// SkippedMedia 因超过大小限制被跳过的媒体
type SkippedMedia struct {
	MessageID int
	Name      string
	SizeMB    float64
}

// Context 过滤器共享的单条消息处理状态。
// 各阶段不依赖前序阶段是否执行过，缺失的字段按零值处理。
type Context struct {
	Client chat.Client
	Event  *chat.Event
	ChatID int64
	Rule   *storage.Rule

	// OriginalText 原始文本，OriginalText 之后不再修改
	OriginalText string
	// MessageText 当前处理后的文本（替换、AI 改写作用于此）
	MessageText string
	// CheckText 关键字匹配用文本（可附加发送者信息）
	CheckText string

	// MediaFiles 已下载到本地的媒体路径，发送顺序即切片顺序
	MediaFiles   []string
	SkippedMedia []SkippedMedia
	Buttons      [][]chat.Button

	ShouldForward bool

	IsMediaGroup  bool
	GroupMessages []*chat.Message

	SenderInfo   string
	TimeInfo     string
	OriginalLink string
	CommentLink  string

	ForwardedMessages []chat.SentMessage

	// OwnedFiles 管道自行下载、推送后必须清理的文件
	OwnedFiles []string

	// Failed 终端阶段（发送/推送）失败时置位，决定整条链的结果
	Failed bool

	Errors []error
}

// Message 当前处理的消息
func (c *Context) Message() *chat.Message {
	if c.Event == nil {
		return nil
	}
	return c.Event.Message
}

// AddError 记录阶段错误，不中断管道
func (c *Context) AddError(stage string, err error) {
	if err == nil {
		return
	}
	c.Errors = append(c.Errors, fmt.Errorf("%s: %w", stage, err))
}

// FinalText 组装最终文本：发送者信息、正文、超限媒体警告、时间、原文链接，
// 非空字段按固定顺序用空行连接
func (c *Context) FinalText() string {
	parts := make([]string, 0, 4+len(c.SkippedMedia))
	if c.SenderInfo != "" {
		parts = append(parts, c.SenderInfo)
	}
	if c.MessageText != "" {
		parts = append(parts, c.MessageText)
	}
	for _, m := range c.SkippedMedia {
		parts = append(parts, fmt.Sprintf("⚠️ 媒体文件 %s (%.2fMB) 超过大小限制", m.Name, m.SizeMB))
	}
	if c.TimeInfo != "" {
		parts = append(parts, c.TimeInfo)
	}
	if c.OriginalLink != "" {
		parts = append(parts, c.OriginalLink)
	}
	return strings.Join(parts, "\n\n")
}
