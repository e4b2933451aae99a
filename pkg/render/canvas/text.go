package canvas

import (
	"strings"
)

// Ellipsis is appended to truncated titles.
const Ellipsis = "..."

// MeasureFunc returns the rendered width of s.
type MeasureFunc func(s string) float64

// WrapText greedily breaks text into lines no wider than maxWidth.
//
// If more than maxLines lines result, the extra lines are dropped and the
// last kept line gets an ellipsis, removing trailing words until it fits.
// A single word wider than maxWidth is cut rune by rune.
func WrapText(text string, maxWidth float64, maxLines int, measure MeasureFunc) []string {
	words := strings.Fields(text)
	if len(words) == 0 || maxLines <= 0 {
		return nil
	}

	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		next := cur + " " + w
		if measure(next) > maxWidth {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur = next
	}
	lines = append(lines, cur)

	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] = ellipsize(lines[maxLines-1], maxWidth, measure)
	}
	for i, l := range lines {
		if measure(l) > maxWidth {
			lines[i] = cutRunes(strings.TrimSuffix(l, Ellipsis), maxWidth, measure)
		}
	}
	return lines
}

// ellipsize appends an ellipsis to line, dropping trailing words until the
// result fits. If even the first word does not fit with the ellipsis, the
// line is returned with the ellipsis and left for cutRunes.
func ellipsize(line string, maxWidth float64, measure MeasureFunc) string {
	if s := line + Ellipsis; measure(s) <= maxWidth {
		return s
	}
	words := strings.Fields(line)
	for i := len(words) - 1; i > 0; i-- {
		if s := strings.Join(words[:i], " ") + Ellipsis; measure(s) <= maxWidth {
			return s
		}
	}
	return words[0] + Ellipsis
}

// cutRunes shortens s rune by rune until s+Ellipsis fits. The ellipsis alone
// is returned when nothing fits.
func cutRunes(s string, maxWidth float64, measure MeasureFunc) string {
	r := []rune(s)
	for n := len(r); n > 0; n-- {
		if out := strings.TrimRight(string(r[:n]), " ") + Ellipsis; measure(out) <= maxWidth {
			return out
		}
	}
	return Ellipsis
}
