package filters

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/internal/logger"
	"github.com/AjianNie/TelegramForwarder2/storage"
)

// keywordFilter 按转发模式评估黑白名单关键字，不通过则终止管道
type keywordFilter struct{}

func (f *keywordFilter) Name() string { return "keyword" }

func (f *keywordFilter) Process(ctx context.Context, c *Context) (bool, error) {
	if len(c.Rule.Keywords) == 0 {
		return true, nil
	}

	checkText := c.CheckText
	// 规则带发送者信息时，关键字同样作用于发送者名称和 ID
	if c.Rule.IsOriginalSender {
		if s := c.Message().Sender; s != nil {
			parts := []string{s.Name, strconv.FormatInt(s.ID, 10), checkText}
			checkText = strings.Join(parts, "\n")
		}
	}
	c.CheckText = checkText

	blackHit := f.anyMatch(c.Rule.Keywords, checkText, true)
	whiteHit := f.anyMatch(c.Rule.Keywords, checkText, false)

	forward := true
	switch c.Rule.ForwardMode {
	case storage.ForwardModeBlacklist:
		forward = !blackHit
	case storage.ForwardModeWhitelist:
		forward = whiteHit
	case storage.ForwardModeBlacklistThenWhitelist:
		forward = !blackHit && whiteHit
	case storage.ForwardModeWhitelistThenBlacklist:
		forward = whiteHit && !blackHit
	}

	if !forward {
		logger.Debug("Message vetoed by keyword rules",
			zap.Int64("rule_id", c.Rule.ID),
			zap.Int("message_id", c.Message().ID),
		)
		c.ShouldForward = false
		return false, nil
	}
	return true, nil
}

// anyMatch 任一指定类型的关键字命中即为真。
// 正则编译失败时该关键字按未命中处理：黑名单放行，白名单拒绝。
func (f *keywordFilter) anyMatch(keywords []storage.Keyword, text string, blacklist bool) bool {
	for _, k := range keywords {
		if k.IsBlacklist != blacklist {
			continue
		}
		ok, err := matchKeyword(k, text)
		if err != nil {
			logger.Warn("Invalid keyword regex, treated as no match",
				zap.Int64("keyword_id", k.ID),
				zap.String("keyword", k.Keyword),
				zap.Error(err),
			)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

func matchKeyword(k storage.Keyword, text string) (bool, error) {
	if k.IsRegex {
		re, err := regexp.Compile(k.Keyword)
		if err != nil {
			return false, err
		}
		return re.MatchString(text), nil
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(k.Keyword)), nil
}
