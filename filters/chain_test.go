package filters

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/AjianNie/TelegramForwarder2/chat"
	"github.com/AjianNie/TelegramForwarder2/storage"
)

func baseRule() *storage.Rule {
	return &storage.Rule{
		ID:           1,
		SourceChatID: -1001234567890,
		TargetChatID: -1009876543210,
		Enabled:      true,
		ForwardMode:  storage.ForwardModeBlacklist,
		MessageMode:  storage.MessageModeMarkdown,
		PreviewMode:  storage.PreviewModeFollow,
		HandleMode:   storage.HandleModeForward,
	}
}

func textEvent(text string) *chat.Event {
	return &chat.Event{
		ChatID: -1001234567890,
		Message: &chat.Message{
			ID:     100,
			ChatID: -1001234567890,
			Text:   text,
			Date:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			Sender: &chat.Sender{ID: 7, Name: "Alice"},
		},
	}
}

func testDeps(t *testing.T) Deps {
	t.Helper()
	return Deps{
		Limiter:        nopLimiter{},
		TempDir:        t.TempDir(),
		MaxMediaSizeMB: 20,
		Location:       time.UTC,
	}
}

func TestDisabledFlagsForwardPlainText(t *testing.T) {
	client := &fakeClient{}
	ch := NewChain(testDeps(t))

	ok := ch.Process(context.Background(), client, textEvent("hello"), baseRule())
	if !ok {
		t.Fatalf("pipeline should succeed")
	}
	if len(client.sends) != 1 {
		t.Fatalf("expected exactly one send, got %d", len(client.sends))
	}
	if client.sends[0].Text != "hello" {
		t.Fatalf("disabled flags must not alter text, got %q", client.sends[0].Text)
	}
	if client.getChatCalls != 0 || len(client.deleted) != 0 || len(client.textEdits) != 0 {
		t.Fatalf("disabled features must not touch the platform: %+v", client)
	}
}

func TestKeywordVetoStopsChain(t *testing.T) {
	rule := baseRule()
	rule.Keywords = []storage.Keyword{{Keyword: "spam", IsBlacklist: true}}
	rule.IsDeleteOriginal = true

	client := &fakeClient{}
	ok := NewChain(testDeps(t)).Process(context.Background(), client, textEvent("buy spam now"), rule)
	if !ok {
		t.Fatalf("veto is not a failure")
	}
	if len(client.sends) != 0 {
		t.Fatalf("vetoed message must not be forwarded")
	}
	if len(client.deleted) != 0 {
		t.Fatalf("vetoed message must not trigger source deletion")
	}
}

func TestWhitelistRequiresMatch(t *testing.T) {
	rule := baseRule()
	rule.ForwardMode = storage.ForwardModeWhitelist
	rule.Keywords = []storage.Keyword{{Keyword: "golang", IsBlacklist: false}}

	client := &fakeClient{}
	ch := NewChain(testDeps(t))

	ch.Process(context.Background(), client, textEvent("about rust"), rule)
	if len(client.sends) != 0 {
		t.Fatalf("non-matching message must be dropped in whitelist mode")
	}

	ch.Process(context.Background(), client, textEvent("about Golang 1.25"), rule)
	if len(client.sends) != 1 {
		t.Fatalf("matching message must pass in whitelist mode")
	}
}

func TestBadKeywordRegexFallback(t *testing.T) {
	rule := baseRule()
	rule.Keywords = []storage.Keyword{{Keyword: "([", IsRegex: true, IsBlacklist: true}}

	client := &fakeClient{}
	NewChain(testDeps(t)).Process(context.Background(), client, textEvent("anything"), rule)
	if len(client.sends) != 1 {
		t.Fatalf("broken blacklist regex must fall back to allow")
	}

	rule.ForwardMode = storage.ForwardModeWhitelist
	rule.Keywords = []storage.Keyword{{Keyword: "([", IsRegex: true, IsBlacklist: false}}
	client2 := &fakeClient{}
	NewChain(testDeps(t)).Process(context.Background(), client2, textEvent("anything"), rule)
	if len(client2.sends) != 0 {
		t.Fatalf("broken whitelist regex must fall back to deny")
	}
}

type fixedProvider struct{}

func (fixedProvider) Rewrite(ctx context.Context, prompt, text string, images []string) (string, error) {
	return "rewritten(" + text + ")", nil
}

func TestFinalTextOrder(t *testing.T) {
	rule := baseRule()
	rule.Replacements = []storage.ReplaceRule{
		{Pattern: "foo", Replacement: "bar", Position: 1},
	}
	rule.EnableAI = true
	rule.IsOriginalSender = true
	rule.IsOriginalTime = true
	rule.IsOriginalLink = true

	deps := testDeps(t)
	deps.AI = fixedProvider{}

	client := &fakeClient{}
	ok := NewChain(deps).Process(context.Background(), client, textEvent("foo news"), rule)
	if !ok || len(client.sends) != 1 {
		t.Fatalf("expected one successful send")
	}

	text := client.sends[0].Text
	wantOrder := []string{
		"Alice",
		"rewritten(bar news)",
		"2026-08-30 12:00:00",
		"原始消息: https://t.me/c/1234567890/100",
	}
	last := -1
	for _, part := range wantOrder {
		idx := strings.Index(text, part)
		if idx < 0 {
			t.Fatalf("final text missing %q: %q", part, text)
		}
		if idx <= last {
			t.Fatalf("final text out of order at %q: %q", part, text)
		}
		last = idx
	}
}

func TestOversizedMediaSkippedWithWarning(t *testing.T) {
	rule := baseRule()
	rule.MaxMediaSizeMB = 20

	ev := textEvent("report")
	ev.Message.Media = []chat.Media{
		{Kind: chat.MediaKindVideo, FileID: "f1", Size: 50 * 1024 * 1024, Name: "big.mp4"},
		{Kind: chat.MediaKindPhoto, FileID: "f2", Size: 1 * 1024 * 1024, Name: "ok.jpg"},
	}

	client := &fakeClient{}
	ok := NewChain(testDeps(t)).Process(context.Background(), client, ev, rule)
	if !ok {
		t.Fatalf("pipeline should succeed")
	}

	if len(client.downloads) != 1 || client.downloads[0].Name != "ok.jpg" {
		t.Fatalf("only in-limit media should be downloaded: %+v", client.downloads)
	}
	if len(client.sentFiles) != 1 {
		t.Fatalf("expected single-file send, got files=%v albums=%v", client.sentFiles, client.sentAlbums)
	}
}

func TestOversizedWarningInFinalText(t *testing.T) {
	c := &Context{
		MessageText: "body",
		SkippedMedia: []SkippedMedia{
			{MessageID: 100, Name: "big.mp4", SizeMB: 50},
		},
		TimeInfo: "12:00",
	}
	text := c.FinalText()
	if !strings.Contains(text, "⚠️ 媒体文件 big.mp4 (50.00MB) 超过大小限制") {
		t.Fatalf("warning fragment missing: %q", text)
	}
	if strings.Index(text, "body") > strings.Index(text, "big.mp4") {
		t.Fatalf("warnings must follow the body: %q", text)
	}
	if strings.Index(text, "big.mp4") > strings.Index(text, "12:00") {
		t.Fatalf("warnings must precede time info: %q", text)
	}
}

func TestSenderFailureFailsChain(t *testing.T) {
	client := &fakeClient{sendErr: errors.New("chat not found")}
	ok := NewChain(testDeps(t)).Process(context.Background(), client, textEvent("hello"), baseRule())
	if ok {
		t.Fatalf("send failure must fail the pipeline")
	}
}

func TestEditModeEditsInPlace(t *testing.T) {
	rule := baseRule()
	rule.HandleMode = storage.HandleModeEdit
	rule.Replacements = []storage.ReplaceRule{{Pattern: "old", Replacement: "new"}}

	client := &fakeClient{}
	ok := NewChain(testDeps(t)).Process(context.Background(), client, textEvent("old text"), rule)
	if !ok {
		t.Fatalf("edit mode should succeed")
	}
	if len(client.textEdits) != 1 || client.textEdits[0] != 100 {
		t.Fatalf("expected edit of source message 100, got %v", client.textEdits)
	}
	if len(client.sends) != 0 {
		t.Fatalf("edit mode must not forward")
	}
}

func TestDeleteOriginalAfterForward(t *testing.T) {
	rule := baseRule()
	rule.IsDeleteOriginal = true

	client := &fakeClient{}
	ok := NewChain(testDeps(t)).Process(context.Background(), client, textEvent("bye"), rule)
	if !ok {
		t.Fatalf("pipeline should succeed")
	}
	if len(client.deleted) != 1 || len(client.deleted[0]) != 1 || client.deleted[0][0] != 100 {
		t.Fatalf("expected deletion of source message 100, got %v", client.deleted)
	}
}

func TestRSSOnlyRuleReleasesMediaFiles(t *testing.T) {
	rule := baseRule()
	rule.OnlyRSS = true

	ev := textEvent("photo post")
	ev.Message.Media = []chat.Media{
		{Kind: chat.MediaKindPhoto, FileID: "f1", Size: 1024, Name: "pic.jpg"},
	}

	client := &fakeClient{}
	ok := NewChain(testDeps(t)).Process(context.Background(), client, ev, rule)
	if !ok {
		t.Fatalf("pipeline should succeed")
	}
	if len(client.sends) != 0 && len(client.sentFiles) != 0 {
		t.Fatalf("rss-only rule must not forward")
	}
	if len(client.downloadPaths) != 1 {
		t.Fatalf("expected one download, got %d", len(client.downloadPaths))
	}
	if _, err := os.Stat(client.downloadPaths[0]); !os.IsNotExist(err) {
		t.Fatalf("downloaded media must be cleaned up when nothing forwards it: %v", err)
	}
}

func TestEditModeReleasesMediaFiles(t *testing.T) {
	rule := baseRule()
	rule.HandleMode = storage.HandleModeEdit

	ev := textEvent("caption")
	ev.Message.Media = []chat.Media{
		{Kind: chat.MediaKindPhoto, FileID: "f1", Size: 1024, Name: "pic.jpg"},
	}

	client := &fakeClient{}
	ok := NewChain(testDeps(t)).Process(context.Background(), client, ev, rule)
	if !ok {
		t.Fatalf("edit mode should succeed")
	}
	if len(client.textEdits) != 1 {
		t.Fatalf("expected one edit, got %d", len(client.textEdits))
	}
	if len(client.downloadPaths) != 1 {
		t.Fatalf("expected one download, got %d", len(client.downloadPaths))
	}
	if _, err := os.Stat(client.downloadPaths[0]); !os.IsNotExist(err) {
		t.Fatalf("downloaded media must be cleaned up after edit mode stops the pipeline: %v", err)
	}
}

func TestReplaceBadRegexIsolation(t *testing.T) {
	rule := baseRule()
	rule.Replacements = []storage.ReplaceRule{
		{Pattern: "([", Replacement: "x", IsRegex: true, Position: 1},
		{Pattern: "foo", Replacement: "bar", Position: 2},
	}

	client := &fakeClient{}
	NewChain(testDeps(t)).Process(context.Background(), client, textEvent("foo here"), rule)
	if len(client.sends) != 1 || client.sends[0].Text != "bar here" {
		t.Fatalf("valid replacement must still apply, got %+v", client.sends)
	}
}
