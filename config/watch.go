package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/internal/logger"
)

// Watch 监听配置文件变更并热加载。
// 编辑器保存往往触发多个事件，这里做 500ms 去抖后统一重载；
// 重载失败保留旧配置。
func Watch(ctx context.Context, configPath string, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// 监听目录而不是文件本身，rename+create 式的原子写也能收到事件
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		target := filepath.Clean(configPath)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					cfg, err := Load(configPath)
					if err != nil {
						logger.Warn("Config reload failed, keeping previous config",
							zap.String("path", configPath),
							zap.Error(err),
						)
						return
					}
					logger.Info("Config reloaded", zap.String("path", configPath))
					if onReload != nil {
						onReload(cfg)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Config watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
