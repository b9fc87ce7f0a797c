package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"  reveal_ui  ", "reveal_ui"},
		{"<script>alert(1)</script>plain", "plain"},
		{"<b>bold</b> label", "bold label"},
	}

	for _, tc := range cases {
		if got := Text(tc.input); got != tc.want {
			t.Fatalf("Text(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTextPtr(t *testing.T) {
	if got := TextPtr(nil); got != nil {
		t.Fatalf("TextPtr(nil) = %v, want nil", got)
	}

	input := " <i>hola</i> "
	got := TextPtr(&input)
	if got == nil || *got != "hola" {
		t.Fatalf("TextPtr = %v, want hola", got)
	}
}
