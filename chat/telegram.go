package chat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/internal/logger"
)

// Telegram 基于 Bot API 的 Client 实现
type Telegram struct {
	bot        *tgbotapi.BotAPI
	history    *History
	httpClient *http.Client
}

// NewTelegram 创建 Telegram 客户端。
// downloadTimeout 用于媒体下载，比普通 API 调用宽松。
func NewTelegram(token, apiEndpoint string, history *History, downloadTimeout time.Duration) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	var bot *tgbotapi.BotAPI
	var err error
	if apiEndpoint != "" {
		bot, err = tgbotapi.NewBotAPIWithAPIEndpoint(token, apiEndpoint)
	} else {
		bot, err = tgbotapi.NewBotAPI(token)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	if downloadTimeout <= 0 {
		downloadTimeout = 5 * time.Minute
	}

	return &Telegram{
		bot:        bot,
		history:    history,
		httpClient: &http.Client{Timeout: downloadTimeout},
	}, nil
}

// Bot 返回底层 BotAPI（更新流消费方使用）
func (t *Telegram) Bot() *tgbotapi.BotAPI {
	return t.bot
}

// History 返回消息缓存
func (t *Telegram) History() *History {
	return t.history
}

// GetChat 获取会话元数据，linked_chat_id 不在 tgbotapi 的类型里，走原始响应
func (t *Telegram) GetChat(ctx context.Context, chatID int64) (*Entity, error) {
	resp, err := t.bot.MakeRequest("getChat", tgbotapi.Params{
		"chat_id": strconv.FormatInt(chatID, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("getChat %d: %w", chatID, err)
	}

	result := gjson.ParseBytes(resp.Result)
	return &Entity{
		ID:           result.Get("id").Int(),
		Title:        result.Get("title").String(),
		Username:     result.Get("username").String(),
		IsBroadcast:  result.Get("type").String() == "channel",
		LinkedChatID: result.Get("linked_chat_id").Int(),
	}, nil
}

// ListNearby 从消息缓存取目标附近的有界窗口
func (t *Telegram) ListNearby(ctx context.Context, chatID int64, aroundID, limit int) ([]*Message, error) {
	return t.history.Nearby(chatID, aroundID, limit), nil
}

// ListRecent 从消息缓存取最近消息
func (t *Telegram) ListRecent(ctx context.Context, chatID int64, limit int) ([]*Message, error) {
	return t.history.Recent(chatID, limit), nil
}

// DownloadMedia 下载媒体到本地，文件名带 uuid 前缀避免跨消息冲突
func (t *Telegram) DownloadMedia(ctx context.Context, m Media, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	url, err := t.bot.GetFileDirectURL(m.FileID)
	if err != nil {
		return "", fmt.Errorf("resolve file url: %w", err)
	}

	name := m.Name
	if name == "" {
		name = filepath.Base(url)
	}
	path := filepath.Join(dir, uuid.NewString()[:8]+"_"+name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download media: unexpected status %s", resp.Status)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write media file: %w", err)
	}

	logger.Debug("Media downloaded",
		zap.String("file_id", m.FileID),
		zap.String("path", path),
	)
	return path, nil
}

// Send 发送文本消息
func (t *Telegram) Send(ctx context.Context, req SendRequest) ([]SentMessage, error) {
	msg := tgbotapi.NewMessage(req.ChatID, req.Text)
	msg.ParseMode = req.ParseMode
	msg.DisableWebPagePreview = req.DisablePreview
	if req.ReplyTo != 0 {
		msg.ReplyToMessageID = req.ReplyTo
	}
	if markup := buildMarkup(req.Buttons); markup != nil {
		msg.ReplyMarkup = *markup
	}

	sent, err := t.bot.Send(msg)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return []SentMessage{{ID: sent.MessageID, ChatID: sent.Chat.ID}}, nil
}

// SendMediaGroup 发送相册，caption 附在第一个媒体上
func (t *Telegram) SendMediaGroup(ctx context.Context, chatID int64, caption, parseMode string, paths []string) ([]SentMessage, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("media group requires at least one file")
	}

	media := make([]interface{}, 0, len(paths))
	for i, path := range paths {
		item := inputMediaFor(path)
		if i == 0 && caption != "" {
			switch m := item.(type) {
			case *tgbotapi.InputMediaPhoto:
				m.Caption = caption
				m.ParseMode = parseMode
			case *tgbotapi.InputMediaVideo:
				m.Caption = caption
				m.ParseMode = parseMode
			case *tgbotapi.InputMediaDocument:
				m.Caption = caption
				m.ParseMode = parseMode
			}
		}
		media = append(media, item)
	}

	group := tgbotapi.MediaGroupConfig{ChatID: chatID, Media: media}
	sent, err := t.bot.SendMediaGroup(group)
	if err != nil {
		return nil, fmt.Errorf("send media group: %w", err)
	}

	out := make([]SentMessage, 0, len(sent))
	for _, m := range sent {
		out = append(out, SentMessage{ID: m.MessageID, ChatID: m.Chat.ID})
	}
	return out, nil
}

// SendFile 发送单个文件
func (t *Telegram) SendFile(ctx context.Context, chatID int64, caption, parseMode, path string, buttons [][]Button) ([]SentMessage, error) {
	var chattable tgbotapi.Chattable
	markup := buildMarkup(buttons)

	switch kindForPath(path) {
	case MediaKindPhoto:
		cfg := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
		cfg.Caption = caption
		cfg.ParseMode = parseMode
		if markup != nil {
			cfg.ReplyMarkup = *markup
		}
		chattable = cfg
	case MediaKindVideo:
		cfg := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
		cfg.Caption = caption
		cfg.ParseMode = parseMode
		if markup != nil {
			cfg.ReplyMarkup = *markup
		}
		chattable = cfg
	default:
		cfg := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
		cfg.Caption = caption
		cfg.ParseMode = parseMode
		if markup != nil {
			cfg.ReplyMarkup = *markup
		}
		chattable = cfg
	}

	sent, err := t.bot.Send(chattable)
	if err != nil {
		return nil, fmt.Errorf("send file: %w", err)
	}
	return []SentMessage{{ID: sent.MessageID, ChatID: sent.Chat.ID}}, nil
}

// EditText 编辑消息文本
func (t *Telegram) EditText(ctx context.Context, chatID int64, messageID int, text, parseMode string, buttons [][]Button) error {
	cfg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	cfg.ParseMode = parseMode
	if markup := buildMarkup(buttons); markup != nil {
		cfg.ReplyMarkup = markup
	}
	if _, err := t.bot.Send(cfg); err != nil {
		return fmt.Errorf("edit message %d: %w", messageID, err)
	}
	return nil
}

// EditButtons 编辑消息按钮
func (t *Telegram) EditButtons(ctx context.Context, chatID int64, messageID int, buttons [][]Button) error {
	markup := buildMarkup(buttons)
	if markup == nil {
		return nil
	}
	cfg := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, *markup)
	if _, err := t.bot.Send(cfg); err != nil {
		return fmt.Errorf("edit buttons on message %d: %w", messageID, err)
	}
	return nil
}

// Delete 删除消息
func (t *Telegram) Delete(ctx context.Context, chatID int64, messageIDs []int) error {
	for _, id := range messageIDs {
		if _, err := t.bot.Request(tgbotapi.NewDeleteMessage(chatID, id)); err != nil {
			return fmt.Errorf("delete message %d: %w", id, err)
		}
	}
	return nil
}

// FromBotMessage 把 tgbotapi 消息转换为内部消息形态
func FromBotMessage(m *tgbotapi.Message) *Message {
	if m == nil {
		return nil
	}

	text := m.Text
	if text == "" {
		text = m.Caption
	}

	msg := &Message{
		ID:        m.MessageID,
		ChatID:    m.Chat.ID,
		Text:      text,
		Date:      time.Unix(int64(m.Date), 0),
		GroupedID: m.MediaGroupID,
	}

	switch {
	case m.SenderChat != nil:
		msg.Sender = &Sender{
			ID:        m.SenderChat.ID,
			Name:      m.SenderChat.Title,
			IsChannel: m.SenderChat.Type == "channel",
		}
	case m.From != nil:
		name := strings.TrimSpace(m.From.FirstName + " " + m.From.LastName)
		if name == "" {
			name = m.From.UserName
		}
		msg.Sender = &Sender{ID: m.From.ID, Name: name}
	}

	switch {
	case len(m.Photo) > 0:
		largest := m.Photo[len(m.Photo)-1]
		msg.Media = append(msg.Media, Media{
			Kind: MediaKindPhoto, FileID: largest.FileID, Size: int64(largest.FileSize),
		})
	case m.Video != nil:
		msg.Media = append(msg.Media, Media{
			Kind: MediaKindVideo, FileID: m.Video.FileID, Size: int64(m.Video.FileSize), Name: m.Video.FileName,
		})
	case m.Animation != nil:
		msg.Media = append(msg.Media, Media{
			Kind: MediaKindAnimation, FileID: m.Animation.FileID, Size: int64(m.Animation.FileSize), Name: m.Animation.FileName,
		})
	case m.Audio != nil:
		msg.Media = append(msg.Media, Media{
			Kind: MediaKindAudio, FileID: m.Audio.FileID, Size: int64(m.Audio.FileSize), Name: m.Audio.FileName,
		})
	case m.Voice != nil:
		msg.Media = append(msg.Media, Media{
			Kind: MediaKindVoice, FileID: m.Voice.FileID, Size: int64(m.Voice.FileSize),
		})
	case m.Document != nil:
		msg.Media = append(msg.Media, Media{
			Kind: MediaKindDocument, FileID: m.Document.FileID, Size: int64(m.Document.FileSize), Name: m.Document.FileName,
		})
	}

	if m.ReplyMarkup != nil {
		for _, row := range m.ReplyMarkup.InlineKeyboard {
			var buttons []Button
			for _, b := range row {
				if b.URL != nil {
					buttons = append(buttons, Button{Text: b.Text, URL: *b.URL})
				}
			}
			if len(buttons) > 0 {
				msg.Buttons = append(msg.Buttons, buttons)
			}
		}
	}

	return msg
}

func buildMarkup(buttons [][]Button) *tgbotapi.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		var btns []tgbotapi.InlineKeyboardButton
		for _, b := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
		}
		if len(btns) > 0 {
			rows = append(rows, btns)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func inputMediaFor(path string) interface{} {
	switch kindForPath(path) {
	case MediaKindPhoto:
		m := tgbotapi.NewInputMediaPhoto(tgbotapi.FilePath(path))
		return &m
	case MediaKindVideo:
		m := tgbotapi.NewInputMediaVideo(tgbotapi.FilePath(path))
		return &m
	default:
		m := tgbotapi.NewInputMediaDocument(tgbotapi.FilePath(path))
		return &m
	}
}

func kindForPath(path string) MediaKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return MediaKindPhoto
	case ".mp4", ".mov", ".mkv", ".avi", ".webm":
		return MediaKindVideo
	default:
		return MediaKindDocument
	}
}
