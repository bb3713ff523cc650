package filters

import (
	"context"
	"time"
)

// delayFilter 按规则配置延迟转发
type delayFilter struct{}

func (f *delayFilter) Name() string { return "delay" }

func (f *delayFilter) Process(ctx context.Context, c *Context) (bool, error) {
	if c.Rule.DelaySeconds <= 0 {
		return true, nil
	}

	timer := time.NewTimer(time.Duration(c.Rule.DelaySeconds) * time.Second)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-timer.C:
		return true, nil
	}
}
