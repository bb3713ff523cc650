package filters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AjianNie/TelegramForwarder2/chat"
)

type nopLimiter struct{}

func (nopLimiter) AcquireRetry(ctx context.Context) error { return nil }

// fakeClient 记录所有平台调用的测试替身
type fakeClient struct {
	entity *chat.Entity
	nearby []*chat.Message
	recent []*chat.Message

	sendErr error

	getChatCalls  int
	downloads     []chat.Media
	downloadPaths []string
	sends         []chat.SendRequest
	sentFiles     []string
	sentAlbums    [][]string
	textEdits     []int
	buttonEdits   [][][]chat.Button
	deleted       [][]int

	nextID int
}

func (f *fakeClient) GetChat(ctx context.Context, chatID int64) (*chat.Entity, error) {
	f.getChatCalls++
	if f.entity == nil {
		return nil, fmt.Errorf("no such chat %d", chatID)
	}
	return f.entity, nil
}

func (f *fakeClient) ListNearby(ctx context.Context, chatID int64, aroundID, limit int) ([]*chat.Message, error) {
	return f.nearby, nil
}

func (f *fakeClient) ListRecent(ctx context.Context, chatID int64, limit int) ([]*chat.Message, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeClient) DownloadMedia(ctx context.Context, m chat.Media, dir string) (string, error) {
	f.downloads = append(f.downloads, m)
	path := filepath.Join(dir, m.Name)
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		return "", err
	}
	f.downloadPaths = append(f.downloadPaths, path)
	return path, nil
}

func (f *fakeClient) Send(ctx context.Context, req chat.SendRequest) ([]chat.SentMessage, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sends = append(f.sends, req)
	f.nextID++
	return []chat.SentMessage{{ID: f.nextID, ChatID: req.ChatID}}, nil
}

func (f *fakeClient) SendMediaGroup(ctx context.Context, chatID int64, caption, parseMode string, paths []string) ([]chat.SentMessage, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sentAlbums = append(f.sentAlbums, paths)
	var sent []chat.SentMessage
	for range paths {
		f.nextID++
		sent = append(sent, chat.SentMessage{ID: f.nextID, ChatID: chatID})
	}
	return sent, nil
}

func (f *fakeClient) SendFile(ctx context.Context, chatID int64, caption, parseMode, path string, buttons [][]chat.Button) ([]chat.SentMessage, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sentFiles = append(f.sentFiles, path)
	f.nextID++
	return []chat.SentMessage{{ID: f.nextID, ChatID: chatID}}, nil
}

func (f *fakeClient) EditText(ctx context.Context, chatID int64, messageID int, text, parseMode string, buttons [][]chat.Button) error {
	f.textEdits = append(f.textEdits, messageID)
	return nil
}

func (f *fakeClient) EditButtons(ctx context.Context, chatID int64, messageID int, buttons [][]chat.Button) error {
	f.buttonEdits = append(f.buttonEdits, buttons)
	return nil
}

func (f *fakeClient) Delete(ctx context.Context, chatID int64, messageIDs []int) error {
	f.deleted = append(f.deleted, messageIDs)
	return nil
}
