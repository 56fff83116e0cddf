// Package htmlsanitize prepares user-entered text (lead memos, received
// SMS bodies) for display inside templates.
package htmlsanitize

import (
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

var tagPattern = regexp.MustCompile(`<[a-zA-Z/!]`)

// Sanitize strips scripts, event handlers and unsafe URLs from s.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// SanitizeToHTML is Sanitize typed for direct template output.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// IsPlainText reports whether s contains no markup.
func IsPlainText(s string) bool {
	return !tagPattern.MatchString(s)
}

// PlainTextToHTML escapes s and keeps its line breaks.
func PlainTextToHTML(s string) template.HTML {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	escaped := html.EscapeString(s)
	return template.HTML("<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>")
}

// PrepareForDisplay renders plain text with line breaks and sanitizes
// anything that looks like markup.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return PlainTextToHTML(s)
	}
	return SanitizeToHTML(s)
}
