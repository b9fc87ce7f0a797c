package postgres

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateNeverSplitsRunes(t *testing.T) {
	cases := []struct {
		name  string
		value string
		max   int
		want  string
	}{
		{"short passes through", "CODE01", codeInputMaxLen, "CODE01"},
		{"ascii cut at limit", strings.Repeat("a", 300), userAgentMaxLen, strings.Repeat("a", 255)},
		{"rune on boundary dropped", strings.Repeat("a", 254) + "é", userAgentMaxLen, strings.Repeat("a", 254)},
		{"multibyte cut lands on boundary", strings.Repeat("á", 20), 31, strings.Repeat("á", 15)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := truncate(tc.value, tc.max)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
			if len(got) > tc.max {
				t.Fatalf("result is %d bytes, limit %d", len(got), tc.max)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("result is not valid UTF-8: %q", got)
			}
		})
	}
}
