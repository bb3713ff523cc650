package storage

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "rules.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndLoadRule(t *testing.T) {
	s := newTestStore(t)

	r := &Rule{
		SourceChatID: -1001234,
		TargetChatID: -1005678,
		Enabled:      true,
		EnableAI:     true,
		AIModel:      "gpt-4o",
	}
	if err := s.CreateRule(r); err != nil {
		t.Fatalf("create rule: %v", err)
	}
	if r.ID == 0 {
		t.Fatalf("expected assigned rule id")
	}

	if err := s.AddKeyword(&Keyword{RuleID: r.ID, Keyword: "spam", IsBlacklist: true}); err != nil {
		t.Fatalf("add keyword: %v", err)
	}
	if err := s.AddReplaceRule(&ReplaceRule{RuleID: r.ID, Pattern: "foo", Replacement: "bar"}); err != nil {
		t.Fatalf("add replace rule: %v", err)
	}
	if err := s.AddPushConfig(&PushConfig{RuleID: r.ID, PushChannel: "ntfy://ntfy.sh/topic", Enabled: true}); err != nil {
		t.Fatalf("add push config: %v", err)
	}

	got, err := s.GetRule(r.ID)
	if err != nil {
		t.Fatalf("get rule: %v", err)
	}
	if got == nil || got.SourceChatID != -1001234 {
		t.Fatalf("unexpected rule: %+v", got)
	}
	if got.ForwardMode != ForwardModeBlacklist {
		t.Fatalf("expected default forward mode blacklist, got %q", got.ForwardMode)
	}

	if err := s.LoadRuleDetail(got); err != nil {
		t.Fatalf("load detail: %v", err)
	}
	if len(got.Keywords) != 1 || got.Keywords[0].Keyword != "spam" {
		t.Fatalf("unexpected keywords: %+v", got.Keywords)
	}
	if len(got.Replacements) != 1 || got.Replacements[0].Pattern != "foo" {
		t.Fatalf("unexpected replacements: %+v", got.Replacements)
	}
	if len(got.PushConfigs) != 1 || got.PushConfigs[0].MediaSendMode != MediaSendModeSingle {
		t.Fatalf("expected default Single send mode: %+v", got.PushConfigs)
	}
}

func TestRulesForSourceOnlyEnabled(t *testing.T) {
	s := newTestStore(t)

	enabled := &Rule{SourceChatID: 100, TargetChatID: 200, Enabled: true}
	disabled := &Rule{SourceChatID: 100, TargetChatID: 300, Enabled: false}
	other := &Rule{SourceChatID: 999, TargetChatID: 200, Enabled: true}
	for _, r := range []*Rule{enabled, disabled, other} {
		if err := s.CreateRule(r); err != nil {
			t.Fatalf("create rule: %v", err)
		}
	}

	rules, err := s.RulesForSource(100)
	if err != nil {
		t.Fatalf("rules for source: %v", err)
	}
	if len(rules) != 1 || rules[0].ID != enabled.ID {
		t.Fatalf("expected only the enabled rule for source 100, got %d rules", len(rules))
	}
}

func TestReplacementsKeepOrder(t *testing.T) {
	s := newTestStore(t)

	r := &Rule{SourceChatID: 1, TargetChatID: 2, Enabled: true}
	if err := s.CreateRule(r); err != nil {
		t.Fatalf("create rule: %v", err)
	}
	for i, pattern := range []string{"first", "second", "third"} {
		if err := s.AddReplaceRule(&ReplaceRule{RuleID: r.ID, Pattern: pattern, Position: i}); err != nil {
			t.Fatalf("add replace rule: %v", err)
		}
	}

	if err := s.LoadRuleDetail(r); err != nil {
		t.Fatalf("load detail: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, rr := range r.Replacements {
		if rr.Pattern != want[i] {
			t.Fatalf("replacement %d = %q, want %q", i, rr.Pattern, want[i])
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t)

	r := &Rule{SourceChatID: 11, TargetChatID: 22, Enabled: true, EnablePush: true}
	if err := s.CreateRule(r); err != nil {
		t.Fatalf("create rule: %v", err)
	}
	if err := s.AddKeyword(&Keyword{RuleID: r.ID, Keyword: "urgent", IsBlacklist: false}); err != nil {
		t.Fatalf("add keyword: %v", err)
	}
	if err := s.AddPushConfig(&PushConfig{RuleID: r.ID, PushChannel: "bark://host/key", Enabled: true, MediaSendMode: MediaSendModeMultiple}); err != nil {
		t.Fatalf("add push config: %v", err)
	}

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := s.ExportRules(path); err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := newTestStore(t)
	n, err := dst.ImportRules(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 1 {
		t.Fatalf("imported %d rules, want 1", n)
	}

	rules, err := dst.RulesForSource(11)
	if err != nil {
		t.Fatalf("rules for source: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule after import, got %d", len(rules))
	}
	got := rules[0]
	if len(got.Keywords) != 1 || got.Keywords[0].Keyword != "urgent" {
		t.Fatalf("keywords lost in round trip: %+v", got.Keywords)
	}
	if len(got.PushConfigs) != 1 || got.PushConfigs[0].MediaSendMode != MediaSendModeMultiple {
		t.Fatalf("push configs lost in round trip: %+v", got.PushConfigs)
	}
}
