package assessment

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// formatResults returns the numeric rows and the same rows as "NN%" strings.
func formatResults(rows []CategoryScore) ([]CategoryScore, []DisplayScore) {
	results := make([]CategoryScore, len(rows))
	copy(results, rows)
	display := make([]DisplayScore, 0, len(rows))
	for _, r := range rows {
		display = append(display, DisplayScore{Label: r.Label, Value: strconv.Itoa(r.Score) + "%"})
	}
	return results, display
}

// capitalize upper-cases the first rune and leaves the rest untouched.
func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 || r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
