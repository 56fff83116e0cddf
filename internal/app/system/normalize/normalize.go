// Package normalize trims and case-folds user input before it is sent to
// the backend or compared.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name; case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status lowercases and trims an account status.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Phone trims a phone number. The backend dedups on the exact string, so
// nothing else is rewritten.
func Phone(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a search keyword; case is preserved.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Choice trims a select value and maps the "all" sentinel to "".
func Choice(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return ""
	}
	return s
}
