package rss

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/glebarez/sqlite"
)

// DefaultMaxItems 每个规则默认保留的条目数
const DefaultMaxItems = 50

// EntryStore sqlite 条目存储，按规则保留最新若干条
type EntryStore struct {
	db       *sql.DB
	maxItems int
}

// OpenEntryStore 打开条目存储
func OpenEntryStore(dbPath string, maxItems int) (*EntryStore, error) {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open rss database: %w", err)
	}

	s := &EntryStore{db: db, maxItems: maxItems}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close 关闭存储
func (s *EntryStore) Close() error {
	return s.db.Close()
}

func (s *EntryStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS rss_entries (
			id TEXT PRIMARY KEY,
			rule_id INTEGER NOT NULL,
			message_id INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			published DATETIME NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			media TEXT NOT NULL DEFAULT '[]'
		);
		CREATE INDEX IF NOT EXISTS idx_rss_entries_rule ON rss_entries(rule_id, published);
	`)
	if err != nil {
		return fmt.Errorf("init rss schema: %w", err)
	}
	return nil
}

// Add 写入条目，超出保留数量时淘汰最旧的
func (s *EntryStore) Add(ctx context.Context, e *Entry) error {
	media, err := json.Marshal(e.Media)
	if err != nil {
		return fmt.Errorf("encode media refs: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rss_entries (id, rule_id, message_id, title, content, published, author, link, media)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.RuleID, e.MessageID, e.Title, e.Content, e.Published, e.Author, e.Link, string(media),
	)
	if err != nil {
		return fmt.Errorf("insert rss entry: %w", err)
	}

	// 淘汰该规则下最旧的多余条目
	_, err = tx.ExecContext(ctx, `
		DELETE FROM rss_entries WHERE rule_id = ? AND id NOT IN (
			SELECT id FROM rss_entries WHERE rule_id = ?
			ORDER BY published DESC, message_id DESC LIMIT ?
		)`,
		e.RuleID, e.RuleID, s.maxItems,
	)
	if err != nil {
		return fmt.Errorf("evict rss entries: %w", err)
	}

	return tx.Commit()
}

// List 按发布时间倒序取最新条目
func (s *EntryStore) List(ctx context.Context, ruleID int64, limit int) ([]*Entry, error) {
	if limit <= 0 || limit > s.maxItems {
		limit = s.maxItems
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rule_id, message_id, title, content, published, author, link, media
		FROM rss_entries WHERE rule_id = ?
		ORDER BY published DESC, message_id DESC LIMIT ?`,
		ruleID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query rss entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var media string
		if err := rows.Scan(&e.ID, &e.RuleID, &e.MessageID, &e.Title, &e.Content,
			&e.Published, &e.Author, &e.Link, &media); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(media), &e.Media); err != nil {
			return nil, fmt.Errorf("decode media refs: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
