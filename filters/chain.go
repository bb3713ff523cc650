package filters

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/ai"
	"github.com/AjianNie/TelegramForwarder2/chat"
	"github.com/AjianNie/TelegramForwarder2/internal/logger"
	"github.com/AjianNie/TelegramForwarder2/push"
	"github.com/AjianNie/TelegramForwarder2/rss"
	"github.com/AjianNie/TelegramForwarder2/storage"
)

// EntrySink 接收 RSS 条目，由条目存储或管理服务实现
type EntrySink interface {
	Add(ctx context.Context, e *rss.Entry) error
}

// Deps 管道依赖，由 cli/run 组装注入
type Deps struct {
	Limiter Limiter
	// AI 改写提供商，nil 表示未配置（启用 AI 的规则会记录错误文本）
	AI ai.Provider
	// Push 推送目的地解析器，nil 表示推送不可用
	Push push.Opener
	// RSS 条目落点，nil 表示 RSS 不可用
	RSS EntrySink

	TempDir         string
	MaxMediaSizeMB  float64
	DefaultAIPrompt string
	Location        *time.Location
}

// Chain 按固定顺序执行全部过滤器
type Chain struct {
	filters []Filter
}

// NewChain 构建管道。阶段顺序固定：
// 初始化 → 延迟 → 关键字 → 替换 → 媒体 → AI → 附加信息 → 评论按钮 →
// RSS → 编辑 → 发送 → 回复按钮 → 推送 → 删除原消息
func NewChain(deps Deps) *Chain {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	return &Chain{
		filters: []Filter{
			&initFilter{},
			&delayFilter{},
			&keywordFilter{},
			&replaceFilter{},
			&mediaFilter{limiter: deps.Limiter, tempDir: deps.TempDir, maxSizeMB: deps.MaxMediaSizeMB},
			&aiFilter{provider: deps.AI, defaultPrompt: deps.DefaultAIPrompt},
			&infoFilter{limiter: deps.Limiter, location: loc},
			&commentButtonFilter{limiter: deps.Limiter},
			&rssFilter{sink: deps.RSS},
			&editFilter{limiter: deps.Limiter},
			&senderFilter{limiter: deps.Limiter},
			&replyFilter{limiter: deps.Limiter},
			&pushFilter{opener: deps.Push},
			&deleteOriginalFilter{limiter: deps.Limiter},
		},
	}
}

// Process 处理一条入站消息。返回 false 仅当终端阶段（发送/推送）失败。
func (ch *Chain) Process(ctx context.Context, client chat.Client, event *chat.Event, rule *storage.Rule) bool {
	c := &Context{
		Client:        client,
		Event:         event,
		ChatID:        event.ChatID,
		Rule:          rule,
		ShouldForward: true,
	}

	for _, f := range ch.filters {
		if !ch.runStage(ctx, f, c) {
			break
		}
	}

	// 终端阶段没有消费掉的下载文件在这里兜底清理，
	// 只出 RSS 和编辑模式的规则不会经过发送/推送的清理路径
	removeFiles(c.OwnedFiles)
	removeFiles(c.MediaFiles)
	c.OwnedFiles, c.MediaFiles = nil, nil

	if len(c.Errors) > 0 {
		logger.Warn("Pipeline finished with errors",
			zap.Int64("rule_id", rule.ID),
			zap.Int64("chat_id", c.ChatID),
			zap.Errors("errors", c.Errors),
		)
	}
	return !c.Failed
}

// runStage 执行单个阶段；panic 被捕获并记录，管道继续
func (ch *Chain) runStage(ctx context.Context, f Filter, c *Context) (cont bool) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			logger.Error("Filter panicked",
				zap.String("filter", f.Name()),
				zap.Int64("rule_id", c.Rule.ID),
				zap.Any("panic", r),
			)
			c.AddError(f.Name(), err)
			cont = true
		}
	}()

	cont, err := f.Process(ctx, c)
	if err != nil {
		logger.Warn("Filter reported error",
			zap.String("filter", f.Name()),
			zap.Int64("rule_id", c.Rule.ID),
			zap.Error(err),
		)
		c.AddError(f.Name(), err)
	}
	return cont
}
