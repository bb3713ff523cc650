package filters

import (
	"context"
	"sort"

	"github.com/AjianNie/TelegramForwarder2/chat"
)

// groupWindowLimit 媒体组解析的消息窗口上限
const groupWindowLimit = 20

// resolveGroup 解析消息所属的媒体组：取目标消息附近的有界窗口，
// 保留同组消息并按 ID 升序返回。非组消息返回只含自身的切片。
// 对同一条消息重复调用结果一致。
func resolveGroup(ctx context.Context, client chat.Client, chatID int64, msg *chat.Message) ([]*chat.Message, error) {
	if msg.GroupedID == "" {
		return []*chat.Message{msg}, nil
	}

	nearby, err := client.ListNearby(ctx, chatID, msg.ID, groupWindowLimit)
	if err != nil {
		return []*chat.Message{msg}, err
	}

	group := make([]*chat.Message, 0, len(nearby))
	seen := false
	for _, m := range nearby {
		if m.GroupedID == msg.GroupedID {
			group = append(group, m)
			if m.ID == msg.ID {
				seen = true
			}
		}
	}
	if !seen {
		group = append(group, msg)
	}

	sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	return group, nil
}

// representative 媒体组的代表消息，取最小 ID
func representative(group []*chat.Message) *chat.Message {
	if len(group) == 0 {
		return nil
	}
	min := group[0]
	for _, m := range group[1:] {
		if m.ID < min.ID {
			min = m
		}
	}
	return min
}
