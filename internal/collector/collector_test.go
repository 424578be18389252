package collector

import "testing"

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text untouched", in: "hello world", want: "hello world"},
		{name: "tags removed", in: "<p>hello <b>world</b></p>", want: "hello world"},
		{name: "entities unescaped", in: "a &amp; b &lt;c&gt;", want: "a & b <c>"},
		{name: "empty", in: "", want: ""},
		{name: "whitespace trimmed", in: "  <i>x</i>  ", want: "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripHTML(tt.in); got != tt.want {
				t.Errorf("stripHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 200); got != "short" {
		t.Errorf("truncate under limit = %q, want unchanged", got)
	}
	long := truncate("abcdefghij", 4)
	if long != "abcd…" {
		t.Errorf("truncate over limit = %q, want %q", long, "abcd…")
	}
	// rune-aware, not byte-aware
	cjk := truncate("你好世界再见", 2)
	if cjk != "你好…" {
		t.Errorf("truncate cjk = %q, want %q", cjk, "你好…")
	}
}
