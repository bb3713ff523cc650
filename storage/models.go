package storage

// ForwardMode 关键字过滤模式
type ForwardMode string

const (
	ForwardModeWhitelist              ForwardMode = "whitelist"
	ForwardModeBlacklist              ForwardMode = "blacklist"
	ForwardModeBlacklistThenWhitelist ForwardMode = "blacklist_then_whitelist"
	ForwardModeWhitelistThenBlacklist ForwardMode = "whitelist_then_blacklist"
)

// PreviewMode 链接预览模式
type PreviewMode string

const (
	PreviewModeOn  PreviewMode = "on"
	PreviewModeOff PreviewMode = "off"
	// PreviewModeFollow 跟随原消息的预览设置
	PreviewModeFollow PreviewMode = "follow"
)

// MessageMode 消息解析模式
type MessageMode string

const (
	MessageModeMarkdown MessageMode = "Markdown"
	MessageModeHTML     MessageMode = "HTML"
)

// HandleMode 消息处理模式
type HandleMode string

const (
	HandleModeForward HandleMode = "forward"
	HandleModeEdit    HandleMode = "edit"
)

// MediaSendMode 推送媒体发送模式
type MediaSendMode string

const (
	// MediaSendModeSingle 每个附件单独一条推送
	MediaSendModeSingle MediaSendMode = "Single"
	// MediaSendModeMultiple 所有附件合并为一条推送
	MediaSendModeMultiple MediaSendMode = "Multiple"
)

// Rule 转发规则。对管道只读。
type Rule struct {
	ID           int64
	SourceChatID int64
	TargetChatID int64
	Enabled      bool

	ForwardMode ForwardMode
	MessageMode MessageMode
	PreviewMode PreviewMode
	HandleMode  HandleMode

	// 延迟转发（秒），0 表示不延迟
	DelaySeconds int

	// AI 改写
	EnableAI bool
	AIPrompt string
	AIModel  string

	// 推送
	EnablePush     bool
	EnableOnlyPush bool

	// RSS
	EnableRSS bool
	OnlyRSS   bool

	// 评论区按钮
	EnableCommentButton bool
	EnableReplyLink     bool

	// 转发后删除源消息
	IsDeleteOriginal bool

	// 附加信息
	IsOriginalSender bool
	IsOriginalTime   bool
	IsOriginalLink   bool
	UserInfoTemplate string
	TimeTemplate     string
	LinkTemplate     string

	// 媒体大小上限（MB），0 表示使用全局配置
	MaxMediaSizeMB float64

	// 关联数据，LoadRuleDetail 填充
	Keywords     []Keyword
	Replacements []ReplaceRule
	PushConfigs  []PushConfig
	RSSConfig    *RSSConfig
}

// Keyword 关键字规则
type Keyword struct {
	ID          int64
	RuleID      int64
	Keyword     string
	IsRegex     bool
	IsBlacklist bool
}

// ReplaceRule 替换规则，按 Position 顺序执行
type ReplaceRule struct {
	ID          int64
	RuleID      int64
	Pattern     string
	Replacement string
	IsRegex     bool
	Position    int
}

// PushConfig 推送配置，连接串由推送层解析
type PushConfig struct {
	ID            int64
	RuleID        int64
	PushChannel   string
	Enabled       bool
	MediaSendMode MediaSendMode
}

// RSSConfig 每条规则的 RSS 配置
type RSSConfig struct {
	RuleID        int64
	Enabled       bool
	MaxItems      int
	TitleTemplate string
}
