// internal/domain/models/page.go
package models

// PageArgs is the window requested from a list or search operation.
type PageArgs struct {
	Limit  int
	Offset int
}

// Page returns the 1-based page number the window starts on.
func (a PageArgs) Page() int {
	if a.Limit <= 0 {
		return 1
	}
	return a.Offset/a.Limit + 1
}

// Page is one fetched window of results plus the server-side total.
type Page[T any] struct {
	Items []T
	Total int
}

// Filter maps a field name to a keyword. Search operations treat the
// supplied fields with OR semantics: a record matches if any field matches.
type Filter map[string]string
