package text

import (
	"regexp"
	"strings"
)

var (
	paragraphBreaks = regexp.MustCompile(`\s*\n\s*\n\s*`)
	lineBreaks      = regexp.MustCompile(`\s*\n\s*`)
)

// Normalize collapses runs of spaces and keeps single and double line breaks.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\a", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)

	text = paragraphBreaks.ReplaceAllString(text, "\a\a")
	text = lineBreaks.ReplaceAllString(text, "\a")

	text = strings.Join(strings.Fields(text), " ")
	text = strings.ReplaceAll(text, "\a", "\n")

	return strings.TrimSpace(text)
}
