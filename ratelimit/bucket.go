package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/internal/logger"
)

// ErrNoToken 等待后仍然拿不到令牌（时钟异常等罕见情况）。
// 调用方应视为可重试的软错误，而不是致命错误。
var ErrNoToken = errors.New("ratelimit: no token available after wait")

// TokenBucket 令牌桶速率限制器。
// 进程内全局一个实例，所有平台 API 调用共享；
// check-refill-debit 全程持锁，并发调用不会重复消费同一个令牌。
type TokenBucket struct {
	capacity float64
	fillRate float64

	mu       sync.Mutex
	tokens   float64
	lastFill time.Time
}

// New 创建令牌桶。capacity 为最大突发量，fillRate 为每秒填充的令牌数。
func New(capacity int, fillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity: float64(capacity),
		fillRate: fillRate,
		tokens:   float64(capacity), // 初始时桶是满的
		lastFill: time.Now(),
	}
}

// fill 按距上次观察经过的时间补充令牌，封顶 capacity。调用方必须持锁。
func (b *TokenBucket) fill() {
	now := time.Now()
	elapsed := now.Sub(b.lastFill).Seconds()
	if elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.fillRate)
		b.lastFill = now
	}
}

// Acquire 获取一个令牌，桶空时阻塞当前任务直到有令牌。
// 等待期间持有锁，后续调用者按到达顺序排队，这与单实例全局限流的语义一致。
func (b *TokenBucket) Acquire(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fill()
	if b.tokens >= 1 {
		b.tokens--
		return nil
	}

	wait := time.Duration((1-b.tokens)/b.fillRate*float64(time.Second)) + 10*time.Millisecond
	logger.Debug("Rate limit hit, waiting for token",
		zap.Duration("wait", wait),
	)

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	b.fill()
	if b.tokens >= 1 {
		b.tokens--
		return nil
	}
	return ErrNoToken
}

// AcquireRetry 获取令牌，ErrNoToken 时重试一次。
// 过滤器统一用这个入口；二次失败按瞬时外部错误处理。
func (b *TokenBucket) AcquireRetry(ctx context.Context) error {
	err := b.Acquire(ctx)
	if errors.Is(err, ErrNoToken) {
		logger.Warn("Token acquisition failed after wait, retrying once")
		return b.Acquire(ctx)
	}
	return err
}

// Tokens 返回当前令牌数（先补充再观察）。
func (b *TokenBucket) Tokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fill()
	return b.tokens
}

// Capacity 返回桶容量。
func (b *TokenBucket) Capacity() float64 {
	return b.capacity
}
