package chat

import (
	"context"
)

// Client 过滤器消费的平台客户端窄接口。
// 所有方法都假定调用方已经先取得速率限制令牌。
type Client interface {
	// GetChat 获取会话元数据（含关联讨论群组）
	GetChat(ctx context.Context, chatID int64) (*Entity, error)

	// ListNearby 返回目标消息附近的有界消息窗口，按消息 ID 升序
	ListNearby(ctx context.Context, chatID int64, aroundID int, limit int) ([]*Message, error)

	// ListRecent 返回会话最近的若干条消息，按消息 ID 降序（新的在前）
	ListRecent(ctx context.Context, chatID int64, limit int) ([]*Message, error)

	// DownloadMedia 下载媒体到 dir，返回本地路径；文件名进程内唯一
	DownloadMedia(ctx context.Context, m Media, dir string) (string, error)

	// Send 发送文本消息
	Send(ctx context.Context, req SendRequest) ([]SentMessage, error)

	// SendMediaGroup 发送媒体组（相册），caption 附在第一个媒体上
	SendMediaGroup(ctx context.Context, chatID int64, caption, parseMode string, paths []string) ([]SentMessage, error)

	// SendFile 发送单个文件
	SendFile(ctx context.Context, chatID int64, caption, parseMode, path string, buttons [][]Button) ([]SentMessage, error)

	// EditText 编辑已发送消息的文本
	EditText(ctx context.Context, chatID int64, messageID int, text, parseMode string, buttons [][]Button) error

	// EditButtons 编辑已发送消息的按钮
	EditButtons(ctx context.Context, chatID int64, messageID int, buttons [][]Button) error

	// Delete 删除消息
	Delete(ctx context.Context, chatID int64, messageIDs []int) error
}
