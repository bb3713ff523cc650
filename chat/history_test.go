package chat

import (
	"testing"
	"time"
)

func histMsg(chatID int64, id int, grouped string) *Message {
	return &Message{ID: id, ChatID: chatID, GroupedID: grouped, Date: time.Now()}
}

func TestHistoryRememberAndRecent(t *testing.T) {
	h := NewHistory(10)
	for i := 1; i <= 5; i++ {
		h.Remember(histMsg(1, i, ""))
	}

	recent := h.Recent(1, 3)
	if len(recent) != 3 {
		t.Fatalf("expected 3 recent messages, got %d", len(recent))
	}
	if recent[0].ID != 5 || recent[2].ID != 3 {
		t.Fatalf("recent not in descending id order: %d, %d", recent[0].ID, recent[2].ID)
	}
}

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 10; i++ {
		h.Remember(histMsg(1, i, ""))
	}

	recent := h.Recent(1, 0)
	if len(recent) != 3 {
		t.Fatalf("history should be bounded to 3, got %d", len(recent))
	}
	if recent[0].ID != 10 {
		t.Fatalf("newest message should survive eviction, got id %d", recent[0].ID)
	}
}

func TestHistoryNearbyAscendingAroundTarget(t *testing.T) {
	h := NewHistory(50)
	for i := 1; i <= 30; i++ {
		h.Remember(histMsg(1, i, ""))
	}

	nearby := h.Nearby(1, 15, 5)
	if len(nearby) != 5 {
		t.Fatalf("expected 5 nearby messages, got %d", len(nearby))
	}
	for i := 1; i < len(nearby); i++ {
		if nearby[i].ID <= nearby[i-1].ID {
			t.Fatalf("nearby not ascending: %d after %d", nearby[i].ID, nearby[i-1].ID)
		}
	}
	found := false
	for _, m := range nearby {
		if m.ID == 15 {
			found = true
		}
	}
	if !found {
		t.Fatalf("window should contain the target message")
	}
}

func TestHistoryRememberOverwritesSameID(t *testing.T) {
	h := NewHistory(10)
	h.Remember(&Message{ID: 1, ChatID: 1, Text: "before"})
	h.Remember(&Message{ID: 1, ChatID: 1, Text: "after"})

	recent := h.Recent(1, 0)
	if len(recent) != 1 {
		t.Fatalf("duplicate id should overwrite, got %d messages", len(recent))
	}
	if recent[0].Text != "after" {
		t.Fatalf("expected edited text, got %q", recent[0].Text)
	}
}

func TestHistoryIsolatedPerChat(t *testing.T) {
	h := NewHistory(10)
	h.Remember(histMsg(1, 1, ""))
	h.Remember(histMsg(2, 1, ""))

	if got := h.Recent(1, 0); len(got) != 1 {
		t.Fatalf("chat 1 should have 1 message, got %d", len(got))
	}
	if got := h.Recent(3, 0); got != nil {
		t.Fatalf("unknown chat should return nil")
	}
}
