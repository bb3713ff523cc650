package filters

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/internal/logger"
)

// replaceFilter 按位置顺序执行文本替换，单条替换的坏正则只跳过自己
type replaceFilter struct{}

func (f *replaceFilter) Name() string { return "replace" }

func (f *replaceFilter) Process(ctx context.Context, c *Context) (bool, error) {
	if len(c.Rule.Replacements) == 0 || c.MessageText == "" {
		return true, nil
	}

	rules := make([]int, len(c.Rule.Replacements))
	for i := range rules {
		rules[i] = i
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return c.Rule.Replacements[rules[i]].Position < c.Rule.Replacements[rules[j]].Position
	})

	text := c.MessageText
	for _, idx := range rules {
		rr := c.Rule.Replacements[idx]
		if rr.IsRegex {
			re, err := regexp.Compile(rr.Pattern)
			if err != nil {
				logger.Warn("Invalid replacement regex, skipped",
					zap.Int64("replace_id", rr.ID),
					zap.String("pattern", rr.Pattern),
					zap.Error(err),
				)
				continue
			}
			text = re.ReplaceAllString(text, rr.Replacement)
		} else {
			text = strings.ReplaceAll(text, rr.Pattern, rr.Replacement)
		}
	}

	c.MessageText = text
	return true, nil
}
