package filters

import "context"

// Filter 管道的一个阶段。
// 返回 false 表示终止后续阶段；返回的 error 只做记录，不改变继续与否。
type Filter interface {
	Name() string
	Process(ctx context.Context, c *Context) (bool, error)
}

// Limiter 平台调用前必须取得的速率令牌
type Limiter interface {
	AcquireRetry(ctx context.Context) error
}
