package filters

import "testing"

func TestSimilarityRatio(t *testing.T) {
	cases := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"Hello World", "Hello World", 1, 1},
		{"Hello World", "Hello Wurld", 0.75, 1},
		{"Hello World", "completely different", 0, 0.5},
		{"", "", 1, 1},
		{"abc", "", 0, 0},
	}
	for _, tc := range cases {
		got := similarityRatio(tc.a, tc.b)
		if got < tc.min || got > tc.max {
			t.Fatalf("ratio(%q, %q) = %f, want within [%f, %f]", tc.a, tc.b, got, tc.min, tc.max)
		}
	}
}

func TestSimilaritySymmetry(t *testing.T) {
	a, b := "转发规则测试", "转发规则侧试"
	if similarityRatio(a, b) != similarityRatio(b, a) {
		t.Fatalf("ratio must be symmetric")
	}
	if similarityRatio(a, b) <= 0.5 {
		t.Fatalf("near-identical CJK strings should score high, got %f", similarityRatio(a, b))
	}
}

func TestPrefixRunes(t *testing.T) {
	if got := prefixRunes("媒体文件超过大小限制", 4); got != "媒体文件" {
		t.Fatalf("rune prefix broken: %q", got)
	}
	if got := prefixRunes("ab", 20); got != "ab" {
		t.Fatalf("short strings returned whole: %q", got)
	}
}
