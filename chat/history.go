package chat

import (
	"sort"
	"sync"
)

// History 每个会话的近期消息环形缓冲。
//
// Bot API 不提供历史消息查询，媒体组解析、评论区匹配和删除窗口都依赖
// 机器人收到过的消息，这里把更新流里见过的消息按会话缓存一个有界窗口。
// 窗口之外的消息视为不存在，这是接受的权衡：同一相册的消息在实践中
// 总是连续到达。
type History struct {
	mu    sync.RWMutex
	size  int
	chats map[int64][]*Message
}

// NewHistory 创建消息缓存，size 为每个会话保留的消息条数
func NewHistory(size int) *History {
	if size <= 0 {
		size = 200
	}
	return &History{
		size:  size,
		chats: make(map[int64][]*Message),
	}
}

// Remember 记录一条消息，同一 ID 重复出现时覆盖（编辑场景）
func (h *History) Remember(msg *Message) {
	if msg == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	buf := h.chats[msg.ChatID]
	for i, m := range buf {
		if m.ID == msg.ID {
			buf[i] = msg
			return
		}
	}

	buf = append(buf, msg)
	if len(buf) > h.size {
		buf = buf[len(buf)-h.size:]
	}
	h.chats[msg.ChatID] = buf
}

// Nearby 返回 aroundID 附近至多 limit 条消息，按 ID 升序
func (h *History) Nearby(chatID int64, aroundID, limit int) []*Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf := h.chats[chatID]
	if len(buf) == 0 {
		return nil
	}

	sorted := make([]*Message, len(buf))
	copy(sorted, buf)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	// 以与 aroundID 的距离排序后取前 limit 条，再恢复 ID 升序
	byDistance := make([]*Message, len(sorted))
	copy(byDistance, sorted)
	sort.Slice(byDistance, func(i, j int) bool {
		di := abs(byDistance[i].ID - aroundID)
		dj := abs(byDistance[j].ID - aroundID)
		if di == dj {
			return byDistance[i].ID < byDistance[j].ID
		}
		return di < dj
	})
	if limit > 0 && len(byDistance) > limit {
		byDistance = byDistance[:limit]
	}
	sort.Slice(byDistance, func(i, j int) bool { return byDistance[i].ID < byDistance[j].ID })
	return byDistance
}

// Recent 返回会话最近 limit 条消息，按 ID 降序
func (h *History) Recent(chatID int64, limit int) []*Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	buf := h.chats[chatID]
	if len(buf) == 0 {
		return nil
	}

	sorted := make([]*Message, len(buf))
	copy(sorted, buf)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
