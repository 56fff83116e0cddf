package paging

import (
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestOffset(t *testing.T) {
	tests := []struct {
		page, size, want int
	}{
		{1, 30, 0},
		{2, 30, 30},
		{3, 100, 200},
		{0, 10, 0},
	}
	for _, tt := range tests {
		if got := Offset(tt.page, tt.size); got != tt.want {
			t.Errorf("Offset(%d, %d) = %d, want %d", tt.page, tt.size, got, tt.want)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{250, 100, 3},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"/x", 1},
		{"/x?page=4", 4},
		{"/x?page=0", 1},
		{"/x?page=-2", 1},
		{"/x?page=abc", 1},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.url, nil)
		if got := ParsePage(r); got != tt.want {
			t.Errorf("ParsePage(%q) = %d, want %d", tt.url, got, tt.want)
		}
	}
}

func TestComputeRange(t *testing.T) {
	got := ComputeRange(2, 30, 30, 75)
	want := Range{Start: 31, End: 60, Total: 75}
	if got != want {
		t.Errorf("ComputeRange = %+v, want %+v", got, want)
	}

	empty := ComputeRange(1, 30, 0, 0)
	if empty.Start != 0 || empty.End != 0 {
		t.Errorf("ComputeRange empty = %+v", empty)
	}
}

func pages(links []Link) []int {
	var out []int
	for _, l := range links {
		if l.Gap {
			out = append(out, 0)
			continue
		}
		out = append(out, l.Page)
	}
	return out
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		want           []int // 0 marks a gap
	}{
		{"single page", 1, 1, []int{1}},
		{"first of many", 1, 10, []int{1, 2, 0, 10}},
		{"middle", 5, 10, []int{1, 0, 4, 5, 6, 0, 10}},
		{"adjacent to first", 3, 10, []int{1, 2, 3, 4, 0, 10}},
		{"last", 10, 10, []int{1, 0, 9, 10}},
		{"small", 2, 3, []int{1, 2, 3}},
		{"none", 1, 0, nil},
	}

	for _, tt := range tests {
		got := pages(Window(tt.current, tt.total))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: Window(%d, %d) = %v, want %v", tt.name, tt.current, tt.total, got, tt.want)
		}
	}
}

func TestWindow_MarksCurrent(t *testing.T) {
	for _, l := range Window(4, 9) {
		if l.Current != (l.Page == 4) {
			t.Errorf("link %+v has wrong Current flag", l)
		}
	}
}

func TestValidSize(t *testing.T) {
	for _, n := range []int{10, 30, 100} {
		if !ValidSize(n) {
			t.Errorf("ValidSize(%d) = false", n)
		}
	}
	if ValidSize(50) {
		t.Error("ValidSize(50) = true")
	}
}
