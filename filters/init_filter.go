package filters

import (
	"context"
)

// initFilter 初始化文本字段和媒体组标记
type initFilter struct{}

func (f *initFilter) Name() string { return "init" }

func (f *initFilter) Process(ctx context.Context, c *Context) (bool, error) {
	msg := c.Message()
	if msg == nil {
		return false, nil
	}

	c.OriginalText = msg.Text
	c.MessageText = msg.Text
	c.CheckText = msg.Text
	c.IsMediaGroup = msg.GroupedID != ""
	c.ShouldForward = true
	return true, nil
}
