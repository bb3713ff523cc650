package push

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/internal/logger"
	"github.com/AjianNie/TelegramForwarder2/types"
)

// Notifier 单个推送目的地
type Notifier interface {
	// Notify 发送一条通知，attachments 为本地文件路径
	Notify(ctx context.Context, body string, attachments []string) error
}

// Opener 把连接串解析为可用的目的地
type Opener interface {
	Open(connection string) (Notifier, error)
}

// Dispatcher 推送调度器。连接串格式参考 apprise：
//
//	slack://TOKEN@CHANNEL
//	discord://WEBHOOK_ID/WEBHOOK_TOKEN
//	ntfy://HOST/TOPIC 或 ntfys://HOST/TOPIC
//	bark://HOST/DEVICE_KEY
//	https://example.com/hook （通用 webhook，JSON 格式）
type Dispatcher struct {
	classifier types.ErrorClassifier
}

// NewDispatcher 创建推送调度器
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		classifier: types.NewSimpleErrorClassifier(),
	}
}

// Open 解析连接串
func (d *Dispatcher) Open(connection string) (Notifier, error) {
	conn := strings.TrimSpace(connection)
	if conn == "" {
		return nil, fmt.Errorf("empty push connection string")
	}

	u, err := url.Parse(conn)
	if err != nil {
		return nil, fmt.Errorf("invalid push connection string: %w", err)
	}

	var inner Notifier
	switch u.Scheme {
	case "slack":
		inner, err = newSlackDestination(u)
	case "discord":
		inner, err = newDiscordDestination(u)
	case "ntfy", "ntfys":
		inner, err = newNtfyDestination(u)
	case "bark", "barks":
		inner, err = newBarkDestination(u)
	case "http", "https":
		inner = newWebhookDestination(conn)
	default:
		return nil, fmt.Errorf("unsupported push scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, err
	}

	return &retryingNotifier{inner: inner, classifier: d.classifier}, nil
}

// retryingNotifier 对瞬时错误重试一次
type retryingNotifier struct {
	inner      Notifier
	classifier types.ErrorClassifier
}

func (r *retryingNotifier) Notify(ctx context.Context, body string, attachments []string) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 1),
		ctx,
	)
	return backoff.Retry(func() error {
		err := r.inner.Notify(ctx, body, attachments)
		if err == nil {
			return nil
		}
		if r.classifier.IsTransient(err) {
			logger.Warn("Push attempt failed, will retry", zap.Error(err))
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}

// 推送目的地共用的 HTTP 超时
const httpTimeout = 30 * time.Second
