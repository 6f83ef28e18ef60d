package normalize

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// Entities are decoded one after another, so "&amp;lt;" ends up as "<".
var (
	htmlEntities = [][2]string{
		{"&nbsp;", " "},
		{"&amp;", "&"},
		{"&lt;", "<"},
		{"&gt;", ">"},
		{"&quot;", `"`},
	}
	documentEntities = [][2]string{
		{"&nbsp;", " "},
		{"&amp;", "&"},
	}
)

// StripHTML removes markup from a rich-text field and decodes the common entities.
func StripHTML(s string) string {
	return sanitize(s, htmlEntities)
}

// ParseDocument flattens an Ed document body to plain text. The document
// format only needs &nbsp; and &amp; decoded.
func ParseDocument(s string) string {
	return sanitize(s, documentEntities)
}

func sanitize(s string, entities [][2]string) string {
	if s == "" {
		return ""
	}
	text := tagPattern.ReplaceAllString(s, "")
	for _, e := range entities {
		text = strings.ReplaceAll(text, e[0], e[1])
	}
	return strings.TrimSpace(text)
}
