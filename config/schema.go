package config

// Config 是主配置结构
type Config struct {
	Log      LogConfig      `mapstructure:"log" json:"log"`
	Telegram TelegramConfig `mapstructure:"telegram" json:"telegram"`
	Storage  StorageConfig  `mapstructure:"storage" json:"storage"`
	AI       AIConfig       `mapstructure:"ai" json:"ai"`
	Media    MediaConfig    `mapstructure:"media" json:"media"`
	RSS      RSSConfig      `mapstructure:"rss" json:"rss"`
	Forward  ForwardConfig  `mapstructure:"forward" json:"forward"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level" json:"level"`
	File  string `mapstructure:"file" json:"file"`
}

// TelegramConfig Telegram 配置
type TelegramConfig struct {
	Token string `mapstructure:"token" json:"token"`
	// APIEndpoint 自建 Bot API Server 地址，留空使用官方地址
	APIEndpoint string `mapstructure:"api_endpoint" json:"api_endpoint"`
	// HistorySize 每个会话保留的近期消息条数，媒体组解析和评论匹配依赖该窗口
	HistorySize int `mapstructure:"history_size" json:"history_size"`
	// RequestTimeout API 调用超时（秒）
	RequestTimeout int `mapstructure:"request_timeout" json:"request_timeout"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	DBPath  string `mapstructure:"db_path" json:"db_path"`
	TempDir string `mapstructure:"temp_dir" json:"temp_dir"`
}

// AIConfig AI 配置
type AIConfig struct {
	DefaultModel  string                  `mapstructure:"default_model" json:"default_model"`
	DefaultPrompt string                  `mapstructure:"default_prompt" json:"default_prompt"`
	SummaryPrompt string                  `mapstructure:"summary_prompt" json:"summary_prompt"`
	Timeout       int                     `mapstructure:"timeout" json:"timeout"`
	OpenAI        OpenAIProviderConfig    `mapstructure:"openai" json:"openai"`
	Anthropic     AnthropicProviderConfig `mapstructure:"anthropic" json:"anthropic"`
	GoogleAI      GoogleAIProviderConfig  `mapstructure:"googleai" json:"googleai"`
}

// OpenAIProviderConfig OpenAI 配置（兼容任何 OpenAI 协议的服务）
type OpenAIProviderConfig struct {
	APIKey  string `mapstructure:"api_key" json:"api_key"`
	BaseURL string `mapstructure:"base_url" json:"base_url"`
}

// AnthropicProviderConfig Anthropic 配置
type AnthropicProviderConfig struct {
	APIKey  string `mapstructure:"api_key" json:"api_key"`
	BaseURL string `mapstructure:"base_url" json:"base_url"`
}

// GoogleAIProviderConfig Google AI (Gemini) 配置
type GoogleAIProviderConfig struct {
	APIKey string `mapstructure:"api_key" json:"api_key"`
}

// MediaConfig 媒体配置
type MediaConfig struct {
	// MaxSizeMB 媒体大小上限（MB），超限的媒体不下载只记录
	MaxSizeMB float64 `mapstructure:"max_size_mb" json:"max_size_mb"`
	// DownloadTimeout 媒体下载超时（秒），比普通 API 调用更宽松
	DownloadTimeout int `mapstructure:"download_timeout" json:"download_timeout"`
}

// RSSConfig RSS 配置
type RSSConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Host    string `mapstructure:"host" json:"host"`
	Port    int    `mapstructure:"port" json:"port"`
	BaseURL string `mapstructure:"base_url" json:"base_url"`
	// DefaultMaxItems 每条规则默认保留的条目数
	DefaultMaxItems int `mapstructure:"default_max_items" json:"default_max_items"`
}

// ForwardConfig 转发行为配置
type ForwardConfig struct {
	// Timezone 时间信息使用的时区
	Timezone string `mapstructure:"timezone" json:"timezone"`
}
