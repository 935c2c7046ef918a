package utils

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var htmlStripper = bluemonday.StrictPolicy()

// StripHTML removes tags and decodes entities.
func StripHTML(s string) string {
	s = htmlStripper.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// UnescapeText decodes entities in text that is already plain, such as
// Reddit titles. Tag-like text is kept.
func UnescapeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}

// Truncate shortens s to at most limit characters, replacing the tail with "...".
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= 3 {
		return string([]rune(s)[:limit])
	}
	return string([]rune(s)[:limit-3]) + "..."
}
