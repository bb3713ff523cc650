package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ruleExport YAML 导入导出的规则形态
type ruleExport struct {
	SourceChatID int64       `yaml:"source_chat_id"`
	TargetChatID int64       `yaml:"target_chat_id"`
	Enabled      bool        `yaml:"enabled"`
	ForwardMode  ForwardMode `yaml:"forward_mode,omitempty"`
	MessageMode  MessageMode `yaml:"message_mode,omitempty"`
	PreviewMode  PreviewMode `yaml:"preview_mode,omitempty"`
	HandleMode   HandleMode  `yaml:"handle_mode,omitempty"`
	DelaySeconds int         `yaml:"delay_seconds,omitempty"`

	EnableAI bool   `yaml:"enable_ai,omitempty"`
	AIPrompt string `yaml:"ai_prompt,omitempty"`
	AIModel  string `yaml:"ai_model,omitempty"`

	EnablePush     bool `yaml:"enable_push,omitempty"`
	EnableOnlyPush bool `yaml:"enable_only_push,omitempty"`
	EnableRSS      bool `yaml:"enable_rss,omitempty"`
	OnlyRSS        bool `yaml:"only_rss,omitempty"`

	EnableCommentButton bool `yaml:"enable_comment_button,omitempty"`
	EnableReplyLink     bool `yaml:"enable_reply_link,omitempty"`
	IsDeleteOriginal    bool `yaml:"is_delete_original,omitempty"`

	IsOriginalSender bool   `yaml:"is_original_sender,omitempty"`
	IsOriginalTime   bool   `yaml:"is_original_time,omitempty"`
	IsOriginalLink   bool   `yaml:"is_original_link,omitempty"`
	UserInfoTemplate string `yaml:"userinfo_template,omitempty"`
	TimeTemplate     string `yaml:"time_template,omitempty"`
	LinkTemplate     string `yaml:"link_template,omitempty"`

	MaxMediaSizeMB float64 `yaml:"max_media_size_mb,omitempty"`

	Keywords     []keywordExport `yaml:"keywords,omitempty"`
	Replacements []replaceExport `yaml:"replacements,omitempty"`
	PushConfigs  []pushExport    `yaml:"push_configs,omitempty"`
}

type keywordExport struct {
	Keyword     string `yaml:"keyword"`
	IsRegex     bool   `yaml:"is_regex,omitempty"`
	IsBlacklist bool   `yaml:"is_blacklist,omitempty"`
}

type replaceExport struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
	IsRegex     bool   `yaml:"is_regex,omitempty"`
}

type pushExport struct {
	PushChannel   string        `yaml:"push_channel"`
	Enabled       bool          `yaml:"enabled"`
	MediaSendMode MediaSendMode `yaml:"media_send_mode,omitempty"`
}

// ExportRules 导出全部规则到 YAML 文件
func (s *Store) ExportRules(path string) error {
	rules, err := s.ListRules()
	if err != nil {
		return err
	}

	exports := make([]ruleExport, 0, len(rules))
	for _, r := range rules {
		if err := s.LoadRuleDetail(r); err != nil {
			return err
		}
		e := ruleExport{
			SourceChatID: r.SourceChatID, TargetChatID: r.TargetChatID,
			Enabled: r.Enabled, ForwardMode: r.ForwardMode, MessageMode: r.MessageMode,
			PreviewMode: r.PreviewMode, HandleMode: r.HandleMode, DelaySeconds: r.DelaySeconds,
			EnableAI: r.EnableAI, AIPrompt: r.AIPrompt, AIModel: r.AIModel,
			EnablePush: r.EnablePush, EnableOnlyPush: r.EnableOnlyPush,
			EnableRSS: r.EnableRSS, OnlyRSS: r.OnlyRSS,
			EnableCommentButton: r.EnableCommentButton, EnableReplyLink: r.EnableReplyLink,
			IsDeleteOriginal: r.IsDeleteOriginal, IsOriginalSender: r.IsOriginalSender,
			IsOriginalTime: r.IsOriginalTime, IsOriginalLink: r.IsOriginalLink,
			UserInfoTemplate: r.UserInfoTemplate, TimeTemplate: r.TimeTemplate,
			LinkTemplate: r.LinkTemplate, MaxMediaSizeMB: r.MaxMediaSizeMB,
		}
		for _, k := range r.Keywords {
			e.Keywords = append(e.Keywords, keywordExport{Keyword: k.Keyword, IsRegex: k.IsRegex, IsBlacklist: k.IsBlacklist})
		}
		for _, rr := range r.Replacements {
			e.Replacements = append(e.Replacements, replaceExport{Pattern: rr.Pattern, Replacement: rr.Replacement, IsRegex: rr.IsRegex})
		}
		for _, p := range r.PushConfigs {
			e.PushConfigs = append(e.PushConfigs, pushExport{PushChannel: p.PushChannel, Enabled: p.Enabled, MediaSendMode: p.MediaSendMode})
		}
		exports = append(exports, e)
	}

	data, err := yaml.Marshal(exports)
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write rules file: %w", err)
	}
	return nil
}

// ImportRules 从 YAML 文件导入规则（追加，不清空已有规则）
func (s *Store) ImportRules(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read rules file: %w", err)
	}

	var exports []ruleExport
	if err := yaml.Unmarshal(data, &exports); err != nil {
		return 0, fmt.Errorf("parse rules file: %w", err)
	}

	imported := 0
	for _, e := range exports {
		r := &Rule{
			SourceChatID: e.SourceChatID, TargetChatID: e.TargetChatID,
			Enabled: e.Enabled, ForwardMode: e.ForwardMode, MessageMode: e.MessageMode,
			PreviewMode: e.PreviewMode, HandleMode: e.HandleMode, DelaySeconds: e.DelaySeconds,
			EnableAI: e.EnableAI, AIPrompt: e.AIPrompt, AIModel: e.AIModel,
			EnablePush: e.EnablePush, EnableOnlyPush: e.EnableOnlyPush,
			EnableRSS: e.EnableRSS, OnlyRSS: e.OnlyRSS,
			EnableCommentButton: e.EnableCommentButton, EnableReplyLink: e.EnableReplyLink,
			IsDeleteOriginal: e.IsDeleteOriginal, IsOriginalSender: e.IsOriginalSender,
			IsOriginalTime: e.IsOriginalTime, IsOriginalLink: e.IsOriginalLink,
			UserInfoTemplate: e.UserInfoTemplate, TimeTemplate: e.TimeTemplate,
			LinkTemplate: e.LinkTemplate, MaxMediaSizeMB: e.MaxMediaSizeMB,
		}
		if err := s.CreateRule(r); err != nil {
			return imported, err
		}
		for _, k := range e.Keywords {
			if err := s.AddKeyword(&Keyword{RuleID: r.ID, Keyword: k.Keyword, IsRegex: k.IsRegex, IsBlacklist: k.IsBlacklist}); err != nil {
				return imported, err
			}
		}
		for i, rr := range e.Replacements {
			if err := s.AddReplaceRule(&ReplaceRule{RuleID: r.ID, Pattern: rr.Pattern, Replacement: rr.Replacement, IsRegex: rr.IsRegex, Position: i}); err != nil {
				return imported, err
			}
		}
		for _, p := range e.PushConfigs {
			if err := s.AddPushConfig(&PushConfig{RuleID: r.ID, PushChannel: p.PushChannel, Enabled: p.Enabled, MediaSendMode: p.MediaSendMode}); err != nil {
				return imported, err
			}
		}
		imported++
	}
	return imported, nil
}
