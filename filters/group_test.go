package filters

import (
	"context"
	"testing"

	"github.com/AjianNie/TelegramForwarder2/chat"
)

func TestResolveGroupFiltersAndSorts(t *testing.T) {
	msg := &chat.Message{ID: 102, GroupedID: "g1"}
	client := &fakeClient{nearby: []*chat.Message{
		{ID: 101, GroupedID: "g1"},
		{ID: 99, GroupedID: "other"},
		{ID: 103, GroupedID: "g1"},
		{ID: 102, GroupedID: "g1"},
		{ID: 104, GroupedID: ""},
	}}

	group, err := resolveGroup(context.Background(), client, -100, msg)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(group) != 3 {
		t.Fatalf("expected 3 group members, got %d", len(group))
	}
	for i := 1; i < len(group); i++ {
		if group[i-1].ID >= group[i].ID {
			t.Fatalf("group not sorted ascending: %v", ids(group))
		}
	}

	again, err := resolveGroup(context.Background(), client, -100, msg)
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if len(again) != len(group) {
		t.Fatalf("resolution must be idempotent: %v vs %v", ids(group), ids(again))
	}
	for i := range group {
		if group[i].ID != again[i].ID {
			t.Fatalf("resolution must be idempotent: %v vs %v", ids(group), ids(again))
		}
	}
}

func TestResolveGroupSingleMessage(t *testing.T) {
	msg := &chat.Message{ID: 5}
	group, err := resolveGroup(context.Background(), &fakeClient{}, -100, msg)
	if err != nil || len(group) != 1 || group[0].ID != 5 {
		t.Fatalf("ungrouped message resolves to itself, got %v (%v)", ids(group), err)
	}
}

func TestRepresentativeIsMinID(t *testing.T) {
	group := []*chat.Message{{ID: 103}, {ID: 101}, {ID: 102}}
	if rep := representative(group); rep == nil || rep.ID != 101 {
		t.Fatalf("representative must be the lowest id, got %v", rep)
	}
	if representative(nil) != nil {
		t.Fatalf("empty group has no representative")
	}
}

func ids(msgs []*chat.Message) []int {
	out := make([]int, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}
