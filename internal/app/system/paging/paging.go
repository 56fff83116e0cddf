// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// Page sizes offered by the list screens.
const (
	SizeSmall  = 10
	SizeMedium = 30
	SizeLarge  = 100
)

// ValidSize reports whether n is one of the supported page sizes.
func ValidSize(n int) bool {
	return n == SizeSmall || n == SizeMedium || n == SizeLarge
}

// ParsePage extracts the 1-based "page" query parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Offset returns the row offset of a 1-based page.
func Offset(page, size int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * size
}

// TotalPages returns ceil(total/size).
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Range holds computed display range values for a paginated list.
type Range struct {
	Start int // 1-based index of the first row shown (0 if none)
	End   int // 1-based index of the last row shown (0 if none)
	Total int
}

// ComputeRange calculates the "Start–End of Total" values for a page.
func ComputeRange(page, size, shown, total int) Range {
	if shown == 0 {
		return Range{Total: total}
	}
	start := Offset(page, size) + 1
	return Range{Start: start, End: start + shown - 1, Total: total}
}

// Link is one entry of a pagination bar. Gap entries render as an ellipsis.
type Link struct {
	Page    int
	Current bool
	Gap     bool
}

// Window returns the pagination bar for current out of total pages:
// the first page, the pages around current, and the last page, with a
// gap marker wherever numbers are skipped.
func Window(current, total int) []Link {
	if total <= 0 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	want := map[int]bool{1: true, total: true}
	for p := current - 1; p <= current+1; p++ {
		if p >= 1 && p <= total {
			want[p] = true
		}
	}

	var links []Link
	prev := 0
	for p := 1; p <= total; p++ {
		if !want[p] {
			continue
		}
		if prev != 0 && p-prev > 1 {
			links = append(links, Link{Gap: true})
		}
		links = append(links, Link{Page: p, Current: p == current})
		prev = p
	}
	return links
}
