package cli

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestPickMessagePrefersChannelPost(t *testing.T) {
	post := &tgbotapi.Message{MessageID: 1}
	msg := &tgbotapi.Message{MessageID: 2}

	update := tgbotapi.Update{ChannelPost: post, Message: msg}
	if got := pickMessage(&update); got != post {
		t.Fatalf("channel post must win over message")
	}

	update = tgbotapi.Update{EditedChannelPost: post}
	if got := pickMessage(&update); got != post {
		t.Fatalf("edited channel post must be handled")
	}

	if pickMessage(&tgbotapi.Update{}) != nil {
		t.Fatalf("empty update carries no message")
	}
}
