package layout

import "strings"

// MeasureFunc returns the rendered pixel width of s.
type MeasureFunc func(s string) float64

// WrapLines greedily wraps text into lines no wider than maxWidth as reported
// by measure. Words are never broken, so a single long word may overflow.
// The result always holds at least one line.
func WrapLines(measure MeasureFunc, text string, maxWidth float64) []string {
	words := strings.Split(text, " ")
	lines := make([]string, 0, 2)
	line := ""

	for _, word := range words {
		candidate := line + word + " "
		if measure(candidate) > maxWidth && line != "" {
			lines = append(lines, strings.TrimSpace(line))
			line = word + " "
			continue
		}
		line = candidate
	}

	return append(lines, strings.TrimSpace(line))
}
