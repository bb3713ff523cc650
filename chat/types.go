package chat

import (
	"time"
)

// MediaKind 媒体类型
type MediaKind string

const (
	MediaKindPhoto     MediaKind = "photo"
	MediaKindVideo     MediaKind = "video"
	MediaKindAudio     MediaKind = "audio"
	MediaKindVoice     MediaKind = "voice"
	MediaKindAnimation MediaKind = "animation"
	MediaKindDocument  MediaKind = "document"
)

// Media 消息附带的媒体
type Media struct {
	Kind   MediaKind `json:"kind"`
	FileID string    `json:"file_id"`
	Size   int64     `json:"size"`
	Name   string    `json:"name"`
}

// Sender 消息发送者
type Sender struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// IsChannel 以频道身份发送（sender_chat）
	IsChannel bool `json:"is_channel"`
}

// Button 内联按钮（仅 URL 按钮，转发场景不需要回调按钮）
type Button struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Message 与平台无关的消息形态
type Message struct {
	ID     int       `json:"id"`
	ChatID int64     `json:"chat_id"`
	Text   string    `json:"text"`
	Date   time.Time `json:"date"`
	// GroupedID 媒体组标识，同组消息作为一个相册转发
	GroupedID string     `json:"grouped_id"`
	Sender    *Sender    `json:"sender"`
	Media     []Media    `json:"media"`
	Buttons   [][]Button `json:"buttons"`
}

// Event 入站消息事件
type Event struct {
	ChatID  int64
	Message *Message
}

// Entity 会话元数据
type Entity struct {
	ID       int64
	Title    string
	Username string
	// IsBroadcast 是否为广播频道
	IsBroadcast bool
	// LinkedChatID 频道关联的讨论群组，0 表示没有
	LinkedChatID int64
}

// SentMessage 发送成功的消息标识
type SentMessage struct {
	ID     int
	ChatID int64
}

// SendRequest 发送请求
type SendRequest struct {
	ChatID         int64
	Text           string
	ParseMode      string
	DisablePreview bool
	Buttons        [][]Button
	ReplyTo        int
}
