package canvas

import (
	"reflect"
	"testing"
	"unicode/utf8"
)

// tenPerRune measures every rune as 10 pixels wide.
func tenPerRune(s string) float64 { return float64(utf8.RuneCountInString(s)) * 10 }

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		width    float64
		maxLines int
		want     []string
	}{
		{"empty", "   ", 100, 2, nil},
		{"fits one line", "Go basics", 100, 2, []string{"Go basics"}},
		{"wraps to two", "Intro to Go", 80, 2, []string{"Intro to", "Go"}},
		{"ellipsis appended", "aa bb cc dd ee", 60, 2, []string{"aa bb", "cc..."}},
		{"exactly two lines", "aa bb cc", 60, 2, []string{"aa bb", "cc"}},
		{"drops words for ellipsis", "aaa bb cc dd", 70, 1, []string{"aaa..."}},
		{"long word cut", "Internationalization", 100, 2, []string{"Interna..."}},
		{"only ellipsis fits", "abcdef", 30, 1, []string{"..."}},
		{"zero lines", "abc", 100, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapText(tt.text, tt.width, tt.maxLines, tenPerRune)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("WrapText(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestWrapTextNeverExceedsWidth(t *testing.T) {
	titles := []string{
		"Advanced Concurrency Patterns in Practice",
		"A",
		"Supercalifragilistic expialidocious",
		"x y z w v u t s r q",
	}
	for _, title := range titles {
		for _, w := range []float64{40, 70, 120, 300} {
			lines := WrapText(title, w, 2, tenPerRune)
			if len(lines) > 2 {
				t.Errorf("%q @%g: %d lines", title, w, len(lines))
			}
			for _, l := range lines {
				if tenPerRune(l) > w {
					t.Errorf("%q @%g: line %q too wide", title, w, l)
				}
			}
		}
	}
}
