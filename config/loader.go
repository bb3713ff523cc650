package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var globalConfig *Config

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := ResolveUserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		// 1) 当前工作目录下 .tgforwarder/config.json
		v.AddConfigPath(filepath.Join(".", ".tgforwarder"))
		// 2) 当前工作目录 ./config.json
		v.AddConfigPath(".")
		// 3) 用户目录 ~/.tgforwarder/config.json
		v.AddConfigPath(filepath.Join(home, ".tgforwarder"))
		v.SetConfigName("config")
		v.SetConfigType("json")
	}

	v.SetEnvPrefix("TGFW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// 配置文件不存在，使用默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("telegram.history_size", 200)
	v.SetDefault("telegram.request_timeout", 15)

	v.SetDefault("storage.db_path", "./data/forward.db")
	v.SetDefault("storage.temp_dir", "./temp")

	v.SetDefault("ai.default_model", "gpt-4o")
	v.SetDefault("ai.default_prompt", "请尊重原意，保持原有格式不变，用简体中文重写下面的内容：")
	v.SetDefault("ai.summary_prompt", "请总结以下频道/群组24小时内的消息。")
	v.SetDefault("ai.timeout", 60)

	v.SetDefault("media.max_size_mb", 20.0)
	v.SetDefault("media.download_timeout", 300)

	v.SetDefault("rss.enabled", false)
	v.SetDefault("rss.host", "127.0.0.1")
	v.SetDefault("rss.port", 8000)
	v.SetDefault("rss.default_max_items", 50)

	v.SetDefault("forward.timezone", "Asia/Shanghai")
}

// Save 保存配置到文件
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get 获取全局配置
func Get() *Config {
	return globalConfig
}

// GetDefaultConfigPath 获取默认配置文件路径
func GetDefaultConfigPath() (string, error) {
	home, err := ResolveUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tgforwarder", "config.json"), nil
}
