// Package table turns a page of records and a column list into the view
// model the list templates render.
package table

import (
	"github.com/dalemusser/leadhub/internal/app/system/listview"
)

// Kind tells the template how to draw a cell.
type Kind string

const (
	KindText   Kind = "text"
	KindMemo   Kind = "memo"   // opens the memo modal
	KindSMS    Kind = "sms"    // opens the read-only message viewer
	KindAction Kind = "action" // edit button
)

// Column describes one table column for records of type T.
// MinLevel 0 means every level may see it; otherwise only levels
// numerically <= MinLevel do.
type Column[T any] struct {
	Key      string
	Label    string
	Format   func(T) string
	Kind     Kind
	MinLevel int
}

// Visible reports whether a viewer at level sees the column.
func (c Column[T]) Visible(level int) bool {
	return c.MinLevel == 0 || level <= c.MinLevel
}

// Header is one rendered column heading.
type Header struct {
	Key   string
	Label string
	Kind  Kind
}

// Cell is one rendered cell.
type Cell struct {
	Key  string
	Text string
	Kind Kind
}

// Row is one rendered record.
type Row struct {
	ID      string
	Checked bool
	Cells   []Cell
}

// View is everything a list template needs to draw the table.
type View struct {
	Headers     []Header
	Rows        []Row
	AllSelected bool
}

// Empty reports whether there are no rows.
func (v View) Empty() bool { return len(v.Rows) == 0 }

// SelectedCount returns how many rendered rows are checked.
func (v View) SelectedCount() int {
	n := 0
	for _, r := range v.Rows {
		if r.Checked {
			n++
		}
	}
	return n
}

// Render builds the view of rows for a viewer at level. AllSelected holds
// when there is at least one row and every row is in selected.
func Render[T listview.Record](rows []T, cols []Column[T], selected map[string]bool, level int) View {
	visible := make([]Column[T], 0, len(cols))
	for _, c := range cols {
		if c.Visible(level) {
			visible = append(visible, c)
		}
	}

	v := View{
		Headers: make([]Header, 0, len(visible)),
		Rows:    make([]Row, 0, len(rows)),
	}
	for _, c := range visible {
		v.Headers = append(v.Headers, Header{Key: c.Key, Label: c.Label, Kind: kindOf(c)})
	}

	all := len(rows) > 0
	for _, rec := range rows {
		id := rec.RecordID()
		row := Row{ID: id, Checked: selected[id], Cells: make([]Cell, 0, len(visible))}
		if !row.Checked {
			all = false
		}
		for _, c := range visible {
			text := ""
			if c.Format != nil {
				text = c.Format(rec)
			}
			row.Cells = append(row.Cells, Cell{Key: c.Key, Text: text, Kind: kindOf(c)})
		}
		v.Rows = append(v.Rows, row)
	}
	v.AllSelected = all
	return v
}

func kindOf[T any](c Column[T]) Kind {
	if c.Kind == "" {
		return KindText
	}
	return c.Kind
}
