// Package sanitize cleans free text from users and from the model before it
// is stored or echoed back.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes markup, decodes entities and removes markup that was
// hidden behind entities.
func StripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

// Text strips markup and control characters and collapses whitespace runs
// to a single space.
func Text(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, StripHTML(s))
	return strings.Join(strings.Fields(s), " ")
}
