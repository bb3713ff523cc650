package ai

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen 断路器打开期间拒绝调用
var ErrCircuitOpen = errors.New("ai: circuit breaker is open")

// CircuitState 断路器状态
type CircuitState int

const (
	// CircuitStateClosed 断路器关闭（正常）
	CircuitStateClosed CircuitState = iota
	// CircuitStateOpen 断路器打开（故障）
	CircuitStateOpen
	// CircuitStateHalfOpen 半开（尝试恢复）
	CircuitStateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitStateClosed:
		return "closed"
	case CircuitStateOpen:
		return "open"
	case CircuitStateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreaker 断路器，保护 AI 提供商调用
type CircuitBreaker struct {
	failureThreshold int
	// 打开后多久进入半开状态
	timeout time.Duration

	mu              sync.RWMutex
	state           CircuitState
	failures        int
	successCount    int
	lastStateChange time.Time
}

// NewCircuitBreaker 创建断路器
func NewCircuitBreaker(failureThreshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		timeout:          timeout,
		state:            CircuitStateClosed,
		lastStateChange:  time.Now(),
	}
}

// Allow 检查当前是否允许调用；打开状态超过 timeout 后放行一次试探
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitStateOpen {
		if time.Since(cb.lastStateChange) > cb.timeout {
			cb.setState(CircuitStateHalfOpen)
			return true
		}
		return false
	}
	return true
}

// RecordSuccess 记录成功
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitStateClosed:
		cb.failures = 0
	case CircuitStateHalfOpen:
		cb.successCount++
		if cb.successCount >= 3 {
			cb.setState(CircuitStateClosed)
		}
	}
}

// RecordFailure 记录失败
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitStateClosed:
		cb.failures++
		if cb.failures >= cb.failureThreshold {
			cb.setState(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		cb.setState(CircuitStateOpen)
	}
}

// State 获取当前状态
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// setState 设置状态，调用方必须持锁
func (cb *CircuitBreaker) setState(state CircuitState) {
	cb.state = state
	cb.lastStateChange = time.Now()
	if state == CircuitStateClosed || state == CircuitStateHalfOpen {
		if state == CircuitStateClosed {
			cb.failures = 0
		}
		cb.successCount = 0
	}
}

// Guarded 带断路器的提供商包装
type Guarded struct {
	inner Provider
	cb    *CircuitBreaker
}

// NewGuarded 包装提供商，连续 5 次失败后熔断 30 秒
func NewGuarded(inner Provider) *Guarded {
	return &Guarded{
		inner: inner,
		cb:    NewCircuitBreaker(5, 30*time.Second),
	}
}

// Rewrite 改写文本，断路器打开时立即失败
func (g *Guarded) Rewrite(ctx context.Context, prompt, text string, images []string) (string, error) {
	if !g.cb.Allow() {
		return "", ErrCircuitOpen
	}

	out, err := g.inner.Rewrite(ctx, prompt, text, images)
	if err != nil {
		g.cb.RecordFailure()
		return "", err
	}
	g.cb.RecordSuccess()
	return out, nil
}
