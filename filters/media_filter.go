package filters

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/chat"
	"github.com/AjianNie/TelegramForwarder2/internal/logger"
)

// mediaFilter 解析媒体组、应用大小限制并下载待转发的媒体
type mediaFilter struct {
	limiter   Limiter
	tempDir   string
	maxSizeMB float64
}

func (f *mediaFilter) Name() string { return "media" }

func (f *mediaFilter) Process(ctx context.Context, c *Context) (bool, error) {
	msg := c.Message()
	if len(msg.Media) == 0 && !c.IsMediaGroup {
		return true, nil
	}

	msgs := []*chat.Message{msg}
	if c.IsMediaGroup {
		group, err := resolveGroup(ctx, c.Client, c.ChatID, msg)
		if err != nil {
			c.AddError(f.Name(), err)
		}
		c.GroupMessages = group
		msgs = group
	}

	limit := c.Rule.MaxMediaSizeMB
	if limit <= 0 {
		limit = f.maxSizeMB
	}

	for _, m := range msgs {
		for _, media := range m.Media {
			sizeMB := float64(media.Size) / (1024 * 1024)
			if limit > 0 && sizeMB > limit {
				c.SkippedMedia = append(c.SkippedMedia, SkippedMedia{
					MessageID: m.ID,
					Name:      media.Name,
					SizeMB:    sizeMB,
				})
				logger.Info("Media exceeds size limit, skipped",
					zap.Int64("rule_id", c.Rule.ID),
					zap.String("name", media.Name),
					zap.Float64("size_mb", sizeMB),
					zap.Float64("limit_mb", limit),
				)
				continue
			}

			path, err := f.download(ctx, c, media)
			if err != nil {
				c.AddError(f.Name(), err)
				continue
			}
			c.MediaFiles = append(c.MediaFiles, path)
		}
	}

	// 只推送模式下文件由管道自己负责清理
	if c.Rule.EnableOnlyPush {
		c.OwnedFiles = append(c.OwnedFiles, c.MediaFiles...)
	}
	return true, nil
}

// download 取令牌后下载，瞬时失败重试一次
func (f *mediaFilter) download(ctx context.Context, c *Context, media chat.Media) (string, error) {
	var path string
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), 1),
		ctx,
	)
	err := backoff.Retry(func() error {
		if err := f.limiter.AcquireRetry(ctx); err != nil {
			return err
		}
		p, err := c.Client.DownloadMedia(ctx, media, f.tempDir)
		if err != nil {
			return err
		}
		path = p
		return nil
	}, policy)
	return path, err
}
