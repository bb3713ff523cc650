package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/glebarez/sqlite"
)

// Store 规则与推送配置的 SQLite 存储
type Store struct {
	db *sql.DB
}

// Open 打开（必要时创建）规则库
func Open(dbPath string) (*Store, error) {
	path := strings.TrimSpace(dbPath)
	if path == "" {
		return nil, fmt.Errorf("rule db path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create rule db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open rule db: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close 关闭存储
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS rules (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source_chat_id INTEGER NOT NULL,
  target_chat_id INTEGER NOT NULL,
  enabled INTEGER NOT NULL DEFAULT 1,
  forward_mode TEXT NOT NULL DEFAULT 'blacklist',
  message_mode TEXT NOT NULL DEFAULT 'Markdown',
  preview_mode TEXT NOT NULL DEFAULT 'follow',
  handle_mode TEXT NOT NULL DEFAULT 'forward',
  delay_seconds INTEGER NOT NULL DEFAULT 0,
  enable_ai INTEGER NOT NULL DEFAULT 0,
  ai_prompt TEXT NOT NULL DEFAULT '',
  ai_model TEXT NOT NULL DEFAULT '',
  enable_push INTEGER NOT NULL DEFAULT 0,
  enable_only_push INTEGER NOT NULL DEFAULT 0,
  enable_rss INTEGER NOT NULL DEFAULT 0,
  only_rss INTEGER NOT NULL DEFAULT 0,
  enable_comment_button INTEGER NOT NULL DEFAULT 0,
  enable_reply_link INTEGER NOT NULL DEFAULT 0,
  is_delete_original INTEGER NOT NULL DEFAULT 0,
  is_original_sender INTEGER NOT NULL DEFAULT 0,
  is_original_time INTEGER NOT NULL DEFAULT 0,
  is_original_link INTEGER NOT NULL DEFAULT 0,
  userinfo_template TEXT NOT NULL DEFAULT '',
  time_template TEXT NOT NULL DEFAULT '',
  link_template TEXT NOT NULL DEFAULT '',
  max_media_size_mb REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_rules_source ON rules(source_chat_id);

CREATE TABLE IF NOT EXISTS keywords (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  rule_id INTEGER NOT NULL REFERENCES rules(id) ON DELETE CASCADE,
  keyword TEXT NOT NULL,
  is_regex INTEGER NOT NULL DEFAULT 0,
  is_blacklist INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS replace_rules (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  rule_id INTEGER NOT NULL REFERENCES rules(id) ON DELETE CASCADE,
  pattern TEXT NOT NULL,
  replacement TEXT NOT NULL DEFAULT '',
  is_regex INTEGER NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS push_configs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  rule_id INTEGER NOT NULL REFERENCES rules(id) ON DELETE CASCADE,
  push_channel TEXT NOT NULL,
  enabled INTEGER NOT NULL DEFAULT 1,
  media_send_mode TEXT NOT NULL DEFAULT 'Single'
);

CREATE TABLE IF NOT EXISTS rss_configs (
  rule_id INTEGER PRIMARY KEY REFERENCES rules(id) ON DELETE CASCADE,
  enabled INTEGER NOT NULL DEFAULT 0,
  max_items INTEGER NOT NULL DEFAULT 50,
  title_template TEXT NOT NULL DEFAULT ''
);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init rule db schema: %w", err)
	}
	return nil
}

// CreateRule 创建规则
func (s *Store) CreateRule(r *Rule) error {
	if r.ForwardMode == "" {
		r.ForwardMode = ForwardModeBlacklist
	}
	if r.MessageMode == "" {
		r.MessageMode = MessageModeMarkdown
	}
	if r.PreviewMode == "" {
		r.PreviewMode = PreviewModeFollow
	}
	if r.HandleMode == "" {
		r.HandleMode = HandleModeForward
	}

	res, err := s.db.Exec(`
		INSERT INTO rules (
			source_chat_id, target_chat_id, enabled, forward_mode, message_mode,
			preview_mode, handle_mode, delay_seconds, enable_ai, ai_prompt, ai_model,
			enable_push, enable_only_push, enable_rss, only_rss,
			enable_comment_button, enable_reply_link, is_delete_original,
			is_original_sender, is_original_time, is_original_link,
			userinfo_template, time_template, link_template, max_media_size_mb
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.SourceChatID, r.TargetChatID, r.Enabled, r.ForwardMode, r.MessageMode,
		r.PreviewMode, r.HandleMode, r.DelaySeconds, r.EnableAI, r.AIPrompt, r.AIModel,
		r.EnablePush, r.EnableOnlyPush, r.EnableRSS, r.OnlyRSS,
		r.EnableCommentButton, r.EnableReplyLink, r.IsDeleteOriginal,
		r.IsOriginalSender, r.IsOriginalTime, r.IsOriginalLink,
		r.UserInfoTemplate, r.TimeTemplate, r.LinkTemplate, r.MaxMediaSizeMB,
	)
	if err != nil {
		return fmt.Errorf("create rule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create rule id: %w", err)
	}
	r.ID = id
	return nil
}

// UpdateRule 更新规则
func (s *Store) UpdateRule(r *Rule) error {
	_, err := s.db.Exec(`
		UPDATE rules SET
			source_chat_id = ?, target_chat_id = ?, enabled = ?, forward_mode = ?,
			message_mode = ?, preview_mode = ?, handle_mode = ?, delay_seconds = ?,
			enable_ai = ?, ai_prompt = ?, ai_model = ?, enable_push = ?,
			enable_only_push = ?, enable_rss = ?, only_rss = ?,
			enable_comment_button = ?, enable_reply_link = ?, is_delete_original = ?,
			is_original_sender = ?, is_original_time = ?, is_original_link = ?,
			userinfo_template = ?, time_template = ?, link_template = ?, max_media_size_mb = ?
		WHERE id = ?
	`,
		r.SourceChatID, r.TargetChatID, r.Enabled, r.ForwardMode,
		r.MessageMode, r.PreviewMode, r.HandleMode, r.DelaySeconds,
		r.EnableAI, r.AIPrompt, r.AIModel, r.EnablePush,
		r.EnableOnlyPush, r.EnableRSS, r.OnlyRSS,
		r.EnableCommentButton, r.EnableReplyLink, r.IsDeleteOriginal,
		r.IsOriginalSender, r.IsOriginalTime, r.IsOriginalLink,
		r.UserInfoTemplate, r.TimeTemplate, r.LinkTemplate, r.MaxMediaSizeMB,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("update rule %d: %w", r.ID, err)
	}
	return nil
}

// DeleteRule 删除规则及其关联数据
func (s *Store) DeleteRule(id int64) error {
	for _, q := range []string{
		`DELETE FROM keywords WHERE rule_id = ?`,
		`DELETE FROM replace_rules WHERE rule_id = ?`,
		`DELETE FROM push_configs WHERE rule_id = ?`,
		`DELETE FROM rss_configs WHERE rule_id = ?`,
		`DELETE FROM rules WHERE id = ?`,
	} {
		if _, err := s.db.Exec(q, id); err != nil {
			return fmt.Errorf("delete rule %d: %w", id, err)
		}
	}
	return nil
}

const ruleColumns = `
	id, source_chat_id, target_chat_id, enabled, forward_mode, message_mode,
	preview_mode, handle_mode, delay_seconds, enable_ai, ai_prompt, ai_model,
	enable_push, enable_only_push, enable_rss, only_rss,
	enable_comment_button, enable_reply_link, is_delete_original,
	is_original_sender, is_original_time, is_original_link,
	userinfo_template, time_template, link_template, max_media_size_mb`

func scanRule(row interface{ Scan(...any) error }) (*Rule, error) {
	var r Rule
	err := row.Scan(
		&r.ID, &r.SourceChatID, &r.TargetChatID, &r.Enabled, &r.ForwardMode, &r.MessageMode,
		&r.PreviewMode, &r.HandleMode, &r.DelaySeconds, &r.EnableAI, &r.AIPrompt, &r.AIModel,
		&r.EnablePush, &r.EnableOnlyPush, &r.EnableRSS, &r.OnlyRSS,
		&r.EnableCommentButton, &r.EnableReplyLink, &r.IsDeleteOriginal,
		&r.IsOriginalSender, &r.IsOriginalTime, &r.IsOriginalLink,
		&r.UserInfoTemplate, &r.TimeTemplate, &r.LinkTemplate, &r.MaxMediaSizeMB,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRule 按 ID 获取规则（不含关联数据）
func (s *Store) GetRule(id int64) (*Rule, error) {
	row := s.db.QueryRow(`SELECT`+ruleColumns+` FROM rules WHERE id = ?`, id)
	r, err := scanRule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rule %d: %w", id, err)
	}
	return r, nil
}

// RulesForSource 返回某个来源会话所有启用的规则，含关联数据
func (s *Store) RulesForSource(sourceChatID int64) ([]*Rule, error) {
	rows, err := s.db.Query(`SELECT`+ruleColumns+` FROM rules WHERE source_chat_id = ? AND enabled = 1`, sourceChatID)
	if err != nil {
		return nil, fmt.Errorf("query rules for source %d: %w", sourceChatID, err)
	}
	defer rows.Close()

	var rules []*Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, r := range rules {
		if err := s.LoadRuleDetail(r); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

// ListRules 列出全部规则（不含关联数据）
func (s *Store) ListRules() ([]*Rule, error) {
	rows, err := s.db.Query(`SELECT` + ruleColumns + ` FROM rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []*Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// LoadRuleDetail 加载规则的关键字、替换规则、推送和 RSS 配置
func (s *Store) LoadRuleDetail(r *Rule) error {
	kwRows, err := s.db.Query(`SELECT id, rule_id, keyword, is_regex, is_blacklist FROM keywords WHERE rule_id = ? ORDER BY id`, r.ID)
	if err != nil {
		return fmt.Errorf("load keywords for rule %d: %w", r.ID, err)
	}
	defer kwRows.Close()
	r.Keywords = r.Keywords[:0]
	for kwRows.Next() {
		var k Keyword
		if err := kwRows.Scan(&k.ID, &k.RuleID, &k.Keyword, &k.IsRegex, &k.IsBlacklist); err != nil {
			return fmt.Errorf("scan keyword: %w", err)
		}
		r.Keywords = append(r.Keywords, k)
	}
	if err := kwRows.Err(); err != nil {
		return err
	}

	repRows, err := s.db.Query(`SELECT id, rule_id, pattern, replacement, is_regex, position FROM replace_rules WHERE rule_id = ? ORDER BY position, id`, r.ID)
	if err != nil {
		return fmt.Errorf("load replacements for rule %d: %w", r.ID, err)
	}
	defer repRows.Close()
	r.Replacements = r.Replacements[:0]
	for repRows.Next() {
		var rr ReplaceRule
		if err := repRows.Scan(&rr.ID, &rr.RuleID, &rr.Pattern, &rr.Replacement, &rr.IsRegex, &rr.Position); err != nil {
			return fmt.Errorf("scan replace rule: %w", err)
		}
		r.Replacements = append(r.Replacements, rr)
	}
	if err := repRows.Err(); err != nil {
		return err
	}

	pushRows, err := s.db.Query(`SELECT id, rule_id, push_channel, enabled, media_send_mode FROM push_configs WHERE rule_id = ? ORDER BY id`, r.ID)
	if err != nil {
		return fmt.Errorf("load push configs for rule %d: %w", r.ID, err)
	}
	defer pushRows.Close()
	r.PushConfigs = r.PushConfigs[:0]
	for pushRows.Next() {
		var p PushConfig
		if err := pushRows.Scan(&p.ID, &p.RuleID, &p.PushChannel, &p.Enabled, &p.MediaSendMode); err != nil {
			return fmt.Errorf("scan push config: %w", err)
		}
		r.PushConfigs = append(r.PushConfigs, p)
	}
	if err := pushRows.Err(); err != nil {
		return err
	}

	var rc RSSConfig
	err = s.db.QueryRow(`SELECT rule_id, enabled, max_items, title_template FROM rss_configs WHERE rule_id = ?`, r.ID).
		Scan(&rc.RuleID, &rc.Enabled, &rc.MaxItems, &rc.TitleTemplate)
	switch {
	case err == sql.ErrNoRows:
		r.RSSConfig = nil
	case err != nil:
		return fmt.Errorf("load rss config for rule %d: %w", r.ID, err)
	default:
		r.RSSConfig = &rc
	}

	return nil
}

// AddKeyword 添加关键字
func (s *Store) AddKeyword(k *Keyword) error {
	res, err := s.db.Exec(`INSERT INTO keywords (rule_id, keyword, is_regex, is_blacklist) VALUES (?, ?, ?, ?)`,
		k.RuleID, k.Keyword, k.IsRegex, k.IsBlacklist)
	if err != nil {
		return fmt.Errorf("add keyword: %w", err)
	}
	k.ID, _ = res.LastInsertId()
	return nil
}

// AddReplaceRule 添加替换规则
func (s *Store) AddReplaceRule(rr *ReplaceRule) error {
	res, err := s.db.Exec(`INSERT INTO replace_rules (rule_id, pattern, replacement, is_regex, position) VALUES (?, ?, ?, ?, ?)`,
		rr.RuleID, rr.Pattern, rr.Replacement, rr.IsRegex, rr.Position)
	if err != nil {
		return fmt.Errorf("add replace rule: %w", err)
	}
	rr.ID, _ = res.LastInsertId()
	return nil
}

// AddPushConfig 添加推送配置
func (s *Store) AddPushConfig(p *PushConfig) error {
	if p.MediaSendMode == "" {
		p.MediaSendMode = MediaSendModeSingle
	}
	res, err := s.db.Exec(`INSERT INTO push_configs (rule_id, push_channel, enabled, media_send_mode) VALUES (?, ?, ?, ?)`,
		p.RuleID, p.PushChannel, p.Enabled, p.MediaSendMode)
	if err != nil {
		return fmt.Errorf("add push config: %w", err)
	}
	p.ID, _ = res.LastInsertId()
	return nil
}

// SetRSSConfig 设置规则的 RSS 配置
func (s *Store) SetRSSConfig(rc *RSSConfig) error {
	_, err := s.db.Exec(`
		INSERT INTO rss_configs (rule_id, enabled, max_items, title_template)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(rule_id) DO UPDATE SET enabled = excluded.enabled,
			max_items = excluded.max_items, title_template = excluded.title_template
	`, rc.RuleID, rc.Enabled, rc.MaxItems, rc.TitleTemplate)
	if err != nil {
		return fmt.Errorf("set rss config: %w", err)
	}
	return nil
}

// SourceChatIDs 返回所有启用规则涉及的来源会话
func (s *Store) SourceChatIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT DISTINCT source_chat_id FROM rules WHERE enabled = 1`)
	if err != nil {
		return nil, fmt.Errorf("query source chats: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
