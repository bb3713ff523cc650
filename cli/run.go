package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/ai"
	"github.com/AjianNie/TelegramForwarder2/chat"
	"github.com/AjianNie/TelegramForwarder2/config"
	"github.com/AjianNie/TelegramForwarder2/filters"
	"github.com/AjianNie/TelegramForwarder2/internal/logger"
	"github.com/AjianNie/TelegramForwarder2/push"
	"github.com/AjianNie/TelegramForwarder2/ratelimit"
	"github.com/AjianNie/TelegramForwarder2/rss"
	"github.com/AjianNie/TelegramForwarder2/storage"
)

// 平台调用整体限速：桶容量 5，每秒回填 3 个令牌
const (
	rateCapacity = 5
	rateFill     = 3.0
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "启动转发服务",
	RunE:  runForwarder,
}

func runForwarder(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dbPath := config.ExpandUserPath(cfg.Storage.DBPath)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open rule store: %w", err)
	}
	defer store.Close()

	tempDir := config.ExpandUserPath(cfg.Storage.TempDir)
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}

	history := chat.NewHistory(cfg.Telegram.HistorySize)
	tg, err := chat.NewTelegram(cfg.Telegram.Token, cfg.Telegram.APIEndpoint, history,
		time.Duration(cfg.Media.DownloadTimeout)*time.Second)
	if err != nil {
		return fmt.Errorf("connect telegram: %w", err)
	}

	limiter := ratelimit.New(rateCapacity, rateFill)

	var provider ai.Provider
	if cfg.AI.DefaultModel != "" {
		provider, err = ai.NewProvider(ctx, &cfg.AI, cfg.AI.DefaultModel)
		if err != nil {
			logger.Warn("AI provider unavailable, rewrite disabled",
				zap.String("model", cfg.AI.DefaultModel), zap.Error(err))
			provider = nil
		}
	}

	var sink filters.EntrySink
	if cfg.RSS.Enabled {
		entryStore, err := rss.OpenEntryStore(
			filepath.Join(filepath.Dir(dbPath), "rss.db"), cfg.RSS.DefaultMaxItems)
		if err != nil {
			return fmt.Errorf("open rss store: %w", err)
		}
		defer entryStore.Close()

		server := rss.NewServer(entryStore, cfg.RSS.Host, cfg.RSS.Port)
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("start rss server: %w", err)
		}
		sink = server
	}

	loc, err := time.LoadLocation(cfg.Forward.Timezone)
	if err != nil {
		logger.Warn("Invalid timezone, using local",
			zap.String("timezone", cfg.Forward.Timezone), zap.Error(err))
		loc = time.Local
	}

	chain := filters.NewChain(filters.Deps{
		Limiter:         limiter,
		AI:              provider,
		Push:            push.NewDispatcher(),
		RSS:             sink,
		TempDir:         tempDir,
		MaxMediaSizeMB:  cfg.Media.MaxSizeMB,
		DefaultAIPrompt: cfg.AI.DefaultPrompt,
		Location:        loc,
	})

	// 配置热加载只做通知，运行中的管道读的是规则库
	if cfgFile != "" {
		if err := config.Watch(ctx, cfgFile, func(updated *config.Config) {
			logger.Info("Configuration reloaded")
		}); err != nil {
			logger.Warn("Config watch disabled", zap.Error(err))
		}
	}

	logger.Info("Forwarder started",
		zap.String("bot", tg.Bot().Self.UserName),
		zap.Bool("rss", cfg.RSS.Enabled),
	)

	return consumeUpdates(ctx, tg, history, store, chain)
}

// consumeUpdates 消费更新流，每个 (消息, 规则) 一个 goroutine
func consumeUpdates(ctx context.Context, tg *chat.Telegram, history *chat.History,
	store *storage.Store, chain *filters.Chain) error {

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message", "channel_post", "edited_message", "edited_channel_post"}
	updates := tg.Bot().GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			tg.Bot().StopReceivingUpdates()
			logger.Info("Shutting down")
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			botMsg := pickMessage(&update)
			if botMsg == nil {
				continue
			}

			msg := chat.FromBotMessage(botMsg)
			history.Remember(msg)

			rules, err := store.RulesForSource(msg.ChatID)
			if err != nil {
				logger.Error("Failed to load rules",
					zap.Int64("chat_id", msg.ChatID), zap.Error(err))
				continue
			}
			if len(rules) == 0 {
				continue
			}

			event := &chat.Event{ChatID: msg.ChatID, Message: msg}
			for _, rule := range rules {
				wg.Add(1)
				go func(rule *storage.Rule) {
					defer wg.Done()
					chain.Process(ctx, tg, event, rule)
				}(rule)
			}
		}
	}
}

// pickMessage 取更新里携带的消息，编辑事件供编辑模式的规则处理
func pickMessage(update *tgbotapi.Update) *tgbotapi.Message {
	switch {
	case update.ChannelPost != nil:
		return update.ChannelPost
	case update.Message != nil:
		return update.Message
	case update.EditedChannelPost != nil:
		return update.EditedChannelPost
	case update.EditedMessage != nil:
		return update.EditedMessage
	default:
		return nil
	}
}
