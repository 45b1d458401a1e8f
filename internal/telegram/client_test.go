package telegram

import (
	"strings"
	"testing"
)

func TestSplitByBytes(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		max   int
		parts []string
	}{
		{"fits", "hello", 10, []string{"hello"}},
		{"ascii split", "abcdef", 4, []string{"abcd", "ef"}},
		{"keeps runes whole", "ééé", 3, []string{"é", "é", "é"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := splitByBytes(tc.text, tc.max)
			if strings.Join(got, "|") != strings.Join(tc.parts, "|") {
				t.Fatalf("splitByBytes(%q, %d) = %q, want %q", tc.text, tc.max, got, tc.parts)
			}
		})
	}
}

func TestTruncateByBytes(t *testing.T) {
	if got := truncateByBytes("añb", 2); got != "a" {
		t.Fatalf("got %q", got)
	}
	if got := truncateByBytes("short", 1024); got != "short" {
		t.Fatalf("got %q", got)
	}
}

func TestParseDataURL(t *testing.T) {
	mimeType, data, err := parseDataURL("data:image/png;base64,AAAA")
	if err != nil {
		t.Fatalf("parseDataURL: %v", err)
	}
	if mimeType != "image/png" || data != "AAAA" {
		t.Fatalf("got %q %q", mimeType, data)
	}

	if _, _, err := parseDataURL("data:image/png;base64"); err == nil {
		t.Fatalf("expected error for data url without payload")
	}
	if _, _, err := parseDataURL("  "); err == nil {
		t.Fatalf("expected error for empty value")
	}
}

func TestKeyboardMarkup(t *testing.T) {
	kb := Keyboard{
		{{Text: "Garment", Data: "slot:garm_img"}, {Text: "Photo", Data: "slot:human_img"}},
		{{Text: "Submitting"}},
	}
	m := kb.markup()
	if len(m.InlineKeyboard) != 2 || len(m.InlineKeyboard[0]) != 2 {
		t.Fatalf("unexpected layout: %+v", m.InlineKeyboard)
	}
	if got := *m.InlineKeyboard[0][1].CallbackData; got != "slot:human_img" {
		t.Fatalf("callback data = %q", got)
	}
	if got := *m.InlineKeyboard[1][0].CallbackData; got != "noop" {
		t.Fatalf("empty data should map to noop, got %q", got)
	}
}
