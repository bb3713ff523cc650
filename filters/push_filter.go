package filters

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AjianNie/TelegramForwarder2/internal/logger"
	"github.com/AjianNie/TelegramForwarder2/push"
	"github.com/AjianNie/TelegramForwarder2/storage"
)

// pushFilter 把消息推送到规则配置的外部目的地。
// 目的地之间互相隔离并发执行；只有全部失败才算终端失败。
type pushFilter struct {
	opener push.Opener
}

func (f *pushFilter) Name() string { return "push" }

func (f *pushFilter) Process(ctx context.Context, c *Context) (bool, error) {
	if !c.Rule.EnablePush && !c.Rule.EnableOnlyPush {
		return true, nil
	}

	// 无论推送结果如何，本阶段是媒体文件的最后使用者
	defer func() {
		removeFiles(c.OwnedFiles)
		removeFiles(c.MediaFiles)
		c.OwnedFiles = nil
		c.MediaFiles = nil
	}()

	configs := make([]storage.PushConfig, 0, len(c.Rule.PushConfigs))
	for _, pc := range c.Rule.PushConfigs {
		if pc.Enabled {
			configs = append(configs, pc)
		}
	}
	if len(configs) == 0 {
		return true, nil
	}
	if f.opener == nil {
		c.AddError(f.Name(), fmt.Errorf("push not configured"))
		return true, nil
	}

	caption := c.FinalText()
	files := c.MediaFiles

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, pc := range configs {
		pc := pc
		g.Go(func() error {
			if err := f.dispatch(ctx, pc, caption, files); err != nil {
				logger.Warn("Push destination failed",
					zap.Int64("rule_id", c.Rule.ID),
					zap.Int64("push_id", pc.ID),
					zap.Error(err),
				)
				mu.Lock()
				errs = append(errs, fmt.Errorf("push %d: %w", pc.ID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	for _, err := range errs {
		c.AddError(f.Name(), err)
	}
	if len(errs) == len(configs) {
		c.Failed = true
		return false, fmt.Errorf("all %d push destinations failed", len(configs))
	}
	return true, nil
}

// dispatch 按目的地的媒体发送模式投递
func (f *pushFilter) dispatch(ctx context.Context, pc storage.PushConfig, caption string, files []string) error {
	dest, err := f.opener.Open(pc.PushChannel)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return dest.Notify(ctx, caption, nil)
	}

	switch pc.MediaSendMode {
	case storage.MediaSendModeSingle:
		return notifyPerFile(ctx, dest, caption, files)
	default:
		// 合并发送失败时退回逐个发送
		if err := dest.Notify(ctx, caption, files); err != nil {
			logger.Warn("Combined push failed, falling back to per-file sends",
				zap.Int64("push_id", pc.ID), zap.Error(err))
			return notifyPerFile(ctx, dest, caption, files)
		}
		return nil
	}
}

// notifyPerFile 每个附件一条推送，标题只挂在第一条
func notifyPerFile(ctx context.Context, dest push.Notifier, caption string, files []string) error {
	for i, file := range files {
		body := ""
		if i == 0 {
			body = caption
		}
		if err := dest.Notify(ctx, body, []string{file}); err != nil {
			return err
		}
	}
	return nil
}
