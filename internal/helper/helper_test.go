package helper

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestMaskIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"356789012345678", "35***********78"},
		{"123456", "12**56"},
		{"1234", "****"},
		{"12", "**"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := MaskIdentifier(tt.in); got != tt.want {
			t.Errorf("MaskIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncatePreview(t *testing.T) {
	long := strings.Repeat("x", 80)

	if got := TruncatePreview("short"); got != "short" {
		t.Errorf("short value changed: %q", got)
	}
	got := TruncatePreview(long)
	if len(got) != 53 || !strings.HasSuffix(got, "...") {
		t.Errorf("TruncatePreview(long) = %q, want 50 chars plus ellipsis", got)
	}
	if got := TruncatePreview("  padded  "); got != "padded" {
		t.Errorf("whitespace not trimmed: %q", got)
	}

	// multi-byte text: the limit counts runes, not bytes
	viet := strings.Repeat("đ", 30) // 60 bytes, 30 runes
	if got := TruncatePreview(viet); got != viet {
		t.Errorf("TruncatePreview(%q) = %q, want unchanged", viet, got)
	}
	longViet := strings.Repeat("đ", 80)
	got = TruncatePreview(longViet)
	if !utf8.ValidString(got) {
		t.Errorf("truncated value is not valid UTF-8: %q", got)
	}
	if want := strings.Repeat("đ", 50) + "..."; got != want {
		t.Errorf("TruncatePreview(long multi-byte) = %q, want %q", got, want)
	}
}

func TestSummarizeChanges(t *testing.T) {
	got := SummarizeChanges([]FieldChange{
		{Label: "Status", Value: "received"},
		{Label: "Notes", Value: "customer called"},
	})
	want := "Status: received | Notes: customer called"
	if got != want {
		t.Errorf("SummarizeChanges = %q, want %q", got, want)
	}

	if got := SummarizeChanges(nil); got != "" {
		t.Errorf("empty changes = %q, want empty string", got)
	}
}
