package filters

import (
	"context"
	"testing"
	"time"

	"github.com/AjianNie/TelegramForwarder2/chat"
	"github.com/AjianNie/TelegramForwarder2/storage"
)

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func commentContext(client *fakeClient, text string) *Context {
	return &Context{
		Client: client,
		ChatID: -1001234567890,
		Rule:   &storage.Rule{ID: 1, EnableCommentButton: true},
		Event: &chat.Event{
			ChatID: -1001234567890,
			Message: &chat.Message{
				ID:   500,
				Text: text,
				Date: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			},
		},
		OriginalText:  text,
		ShouldForward: true,
	}
}

func TestCommentButtonExactMatchBeatsTimeAdjacent(t *testing.T) {
	postDate := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	client := &fakeClient{
		entity: &chat.Entity{
			ID: -1001234567890, Username: "newschan",
			IsBroadcast: true, LinkedChatID: -1005550001,
		},
		recent: []*chat.Message{
			// 时间邻近但文本有错别字
			{ID: 12, Text: "Hello Wurld", Date: postDate.Add(5 * time.Second)},
			// 文本完全一致但时间很远
			{ID: 11, Text: "Hello World", Date: postDate.Add(-2 * time.Hour)},
		},
	}

	f := &commentButtonFilter{limiter: nopLimiter{}, sleep: noSleep}
	c := commentContext(client, "Hello World")
	if _, err := f.Process(context.Background(), c); err != nil {
		t.Fatalf("process: %v", err)
	}

	want := "https://t.me/newschan/500?comment=11"
	if c.CommentLink != want {
		t.Fatalf("exact text match must win: got %q want %q", c.CommentLink, want)
	}
	if len(c.Buttons) != 1 || c.Buttons[0][0].URL != want {
		t.Fatalf("comment button not prepended: %+v", c.Buttons)
	}
}

func TestCommentButtonSimilarityMatch(t *testing.T) {
	postDate := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	client := &fakeClient{
		entity: &chat.Entity{
			ID: -1001234567890, Username: "newschan",
			IsBroadcast: true, LinkedChatID: -1005550001,
		},
		recent: []*chat.Message{
			{ID: 21, Text: "completely different", Date: postDate.Add(-2 * time.Hour)},
			{ID: 22, Text: "Hello Wurld", Date: postDate.Add(-3 * time.Hour)},
		},
	}

	f := &commentButtonFilter{limiter: nopLimiter{}, sleep: noSleep}
	c := commentContext(client, "Hello World")
	if _, err := f.Process(context.Background(), c); err != nil {
		t.Fatalf("process: %v", err)
	}
	if c.CommentLink != "https://t.me/newschan/500?comment=22" {
		t.Fatalf("similar prefix must match before time window, got %q", c.CommentLink)
	}
}

func TestCommentButtonFallbackLink(t *testing.T) {
	client := &fakeClient{
		entity: &chat.Entity{ID: -1001234567890, IsBroadcast: true},
	}

	f := &commentButtonFilter{limiter: nopLimiter{}, sleep: noSleep}
	c := commentContext(client, "post")
	if _, err := f.Process(context.Background(), c); err != nil {
		t.Fatalf("process: %v", err)
	}

	want := "https://t.me/c/1234567890/500?comment=1"
	if c.CommentLink != want {
		t.Fatalf("channel without linked group gets plain comment link: got %q want %q", c.CommentLink, want)
	}
}

func TestCommentButtonSkipsRSSOnlyRule(t *testing.T) {
	client := &fakeClient{
		entity: &chat.Entity{ID: -1001234567890, IsBroadcast: true, LinkedChatID: -1005550001},
	}
	f := &commentButtonFilter{limiter: nopLimiter{}, sleep: noSleep}
	c := commentContext(client, "post")
	c.Rule.OnlyRSS = true

	if _, err := f.Process(context.Background(), c); err != nil {
		t.Fatalf("process: %v", err)
	}
	if client.getChatCalls != 0 {
		t.Fatalf("rss-only rule must not touch the platform")
	}
	if c.CommentLink != "" || len(c.Buttons) != 0 {
		t.Fatalf("rss-only rule gets no comment button: %+v", c)
	}
}

func TestCommentButtonSkipsEmptyMessage(t *testing.T) {
	client := &fakeClient{
		entity: &chat.Entity{ID: -1001234567890, IsBroadcast: true},
	}
	f := &commentButtonFilter{limiter: nopLimiter{}, sleep: noSleep}
	c := commentContext(client, "")

	if _, err := f.Process(context.Background(), c); err != nil {
		t.Fatalf("process: %v", err)
	}
	if client.getChatCalls != 0 || c.CommentLink != "" {
		t.Fatalf("message without text or media gets no comment button: %+v", c)
	}
}

func TestCommentButtonSkipsNonBroadcast(t *testing.T) {
	client := &fakeClient{
		entity: &chat.Entity{ID: -100, IsBroadcast: false},
	}
	f := &commentButtonFilter{limiter: nopLimiter{}, sleep: noSleep}
	c := commentContext(client, "post")
	if _, err := f.Process(context.Background(), c); err != nil {
		t.Fatalf("process: %v", err)
	}
	if c.CommentLink != "" || len(c.Buttons) != 0 {
		t.Fatalf("groups do not get comment buttons: %+v", c)
	}
}
