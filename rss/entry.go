package rss

import (
	"time"

	"github.com/google/uuid"
)

// MediaRef 条目里的媒体描述
type MediaRef struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Entry 一条 RSS 条目
type Entry struct {
	ID        string     `json:"id"`
	RuleID    int64      `json:"rule_id"`
	MessageID int        `json:"message_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Published time.Time  `json:"published"`
	Author    string     `json:"author"`
	Link      string     `json:"link"`
	Media     []MediaRef `json:"media,omitempty"`
}

// NewEntry 创建条目并分配 id
func NewEntry(ruleID int64, messageID int) *Entry {
	return &Entry{
		ID:        uuid.New().String(),
		RuleID:    ruleID,
		MessageID: messageID,
		Published: time.Now(),
	}
}
