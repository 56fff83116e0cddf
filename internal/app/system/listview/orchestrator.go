// Package listview holds the per-screen table state behind every list page:
// current page, active filter, search mode, the page-scoped selection and
// the last fetched results. Handlers drive it through the transitions
// below; each transition that changes what is displayed re-fetches.
package listview

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/leadhub/internal/app/system/paging"
	"github.com/dalemusser/leadhub/internal/domain/models"
)

// Record is any row with a stable unique id.
type Record interface {
	RecordID() string
}

// Fetcher supplies pages of T. It is passed per call because it carries
// the caller's credential.
type Fetcher[T Record] interface {
	List(ctx context.Context, args models.PageArgs) (models.Page[T], error)
	Search(ctx context.Context, args models.PageArgs, filter models.Filter) (models.Page[T], error)
}

// Status of the last fetch.
type Status int

const (
	Idle Status = iota
	Loading
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// Filter is the active search: one field and its keyword.
type Filter struct {
	Field   string
	Keyword string
}

// Map returns the filter in the shape search operations take.
func (f Filter) Map() models.Filter {
	if f.Field == "" {
		return models.Filter{}
	}
	return models.Filter{f.Field: f.Keyword}
}

// Orchestrator is the table state of one screen for one session.
// It is safe for concurrent use. Fetch results are tagged with a
// generation; a result that returns after a newer fetch started is dropped.
type Orchestrator[T Record] struct {
	mu         sync.Mutex
	pageSize   int
	page       int
	filter     Filter
	searchMode bool
	selection  map[string]struct{}
	results    models.Page[T]
	status     Status
	err        error
	gen        uint64
	touched    time.Time
	bulkLimit  int
}

// DefaultBulkLimit caps concurrent per-record calls of a bulk action.
const DefaultBulkLimit = 8

// Option configures an Orchestrator.
type Option func(*options)

type options struct {
	bulkLimit int
}

// WithBulkLimit sets how many per-record calls a bulk action runs at once.
func WithBulkLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bulkLimit = n
		}
	}
}

// New returns an orchestrator on page 1 with the given page size.
func New[T Record](pageSize int, opts ...Option) *Orchestrator[T] {
	cfg := options{bulkLimit: DefaultBulkLimit}
	for _, fn := range opts {
		fn(&cfg)
	}
	if pageSize <= 0 {
		pageSize = paging.SizeMedium
	}
	return &Orchestrator[T]{
		pageSize:  pageSize,
		page:      1,
		selection: map[string]struct{}{},
		touched:   time.Now(),
		bulkLimit: cfg.bulkLimit,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Transitions                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// SetPage moves to page n (clamped to 1) and re-fetches with the last
// filter when search mode is on, otherwise with the unfiltered list.
func (o *Orchestrator[T]) SetPage(ctx context.Context, f Fetcher[T], n int) error {
	o.mu.Lock()
	if n < 1 {
		n = 1
	}
	o.page = n
	o.clearSelectionLocked()
	o.mu.Unlock()
	return o.fetch(ctx, f)
}

// RunSearch trims keyword, switches search mode on, resets to page 1 and
// fetches. An empty keyword is sent as-is and matches everything.
func (o *Orchestrator[T]) RunSearch(ctx context.Context, f Fetcher[T], field, keyword string) error {
	o.mu.Lock()
	o.filter = Filter{Field: strings.TrimSpace(field), Keyword: strings.TrimSpace(keyword)}
	o.searchMode = true
	o.page = 1
	o.clearSelectionLocked()
	o.mu.Unlock()
	return o.fetch(ctx, f)
}

// ClearSearch switches search mode off, resets to page 1 and fetches the
// unfiltered list. The last filter is kept for redisplay.
func (o *Orchestrator[T]) ClearSearch(ctx context.Context, f Fetcher[T]) error {
	o.mu.Lock()
	o.searchMode = false
	o.page = 1
	o.clearSelectionLocked()
	o.mu.Unlock()
	return o.fetch(ctx, f)
}

// Refresh re-fetches the current page in the current mode.
func (o *Orchestrator[T]) Refresh(ctx context.Context, f Fetcher[T]) error {
	return o.fetch(ctx, f)
}

// ToggleSelectAll selects exactly the current page's rows, or nothing.
func (o *Orchestrator[T]) ToggleSelectAll(checked bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.touched = time.Now()
	o.clearSelectionLocked()
	if !checked {
		return
	}
	for _, item := range o.results.Items {
		o.selection[item.RecordID()] = struct{}{}
	}
}

// ToggleSelectRow adds or removes id. Ids not on the current page are
// ignored so the selection stays a subset of the displayed rows.
func (o *Orchestrator[T]) ToggleSelectRow(checked bool, id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.touched = time.Now()
	if !checked {
		delete(o.selection, id)
		return
	}
	if o.onPageLocked(id) {
		o.selection[id] = struct{}{}
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Fetch                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (o *Orchestrator[T]) fetch(ctx context.Context, f Fetcher[T]) error {
	o.mu.Lock()
	o.gen++
	gen := o.gen
	args := models.PageArgs{Limit: o.pageSize, Offset: paging.Offset(o.page, o.pageSize)}
	search, filter := o.searchMode, o.filter
	o.status = Loading
	o.touched = time.Now()
	o.mu.Unlock()

	var (
		page models.Page[T]
		err  error
	)
	if search {
		page, err = f.Search(ctx, args, filter.Map())
	} else {
		page, err = f.List(ctx, args)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.gen {
		// A newer fetch owns the state now.
		return err
	}
	if err != nil {
		o.status = Failed
		o.err = err
		return err
	}
	o.results = page
	o.status = Idle
	o.err = nil
	o.pruneSelectionLocked()
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Accessors                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// Snapshot is a consistent copy of the orchestrator state for rendering.
type Snapshot[T Record] struct {
	Page       int
	PageSize   int
	TotalPages int
	Filter     Filter
	SearchMode bool
	Items      []T
	Total      int
	Selected   map[string]bool
	Status     Status
	Err        error
	Range      paging.Range
	Links      []paging.Link
}

// Snapshot returns the current state.
func (o *Orchestrator[T]) Snapshot() Snapshot[T] {
	o.mu.Lock()
	defer o.mu.Unlock()

	items := make([]T, len(o.results.Items))
	copy(items, o.results.Items)
	sel := make(map[string]bool, len(o.selection))
	for id := range o.selection {
		sel[id] = true
	}
	totalPages := paging.TotalPages(o.results.Total, o.pageSize)

	return Snapshot[T]{
		Page:       o.page,
		PageSize:   o.pageSize,
		TotalPages: totalPages,
		Filter:     o.filter,
		SearchMode: o.searchMode,
		Items:      items,
		Total:      o.results.Total,
		Selected:   sel,
		Status:     o.status,
		Err:        o.err,
		Range:      paging.ComputeRange(o.page, o.pageSize, len(items), o.results.Total),
		Links:      paging.Window(o.page, totalPages),
	}
}

// Selection returns the selected ids in page order.
func (o *Orchestrator[T]) Selection() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selectionLocked()
}

// Loaded reports whether a fetch has completed since creation.
func (o *Orchestrator[T]) Loaded() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gen > 0 && o.status != Loading
}

// Page returns the current 1-based page.
func (o *Orchestrator[T]) Page() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.page
}

// Find returns the row with id on the current page.
func (o *Orchestrator[T]) Find(id string) (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, item := range o.results.Items {
		if item.RecordID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (o *Orchestrator[T]) lastTouched() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.touched
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers (caller holds o.mu)                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (o *Orchestrator[T]) clearSelectionLocked() {
	o.selection = map[string]struct{}{}
}

func (o *Orchestrator[T]) onPageLocked(id string) bool {
	for _, item := range o.results.Items {
		if item.RecordID() == id {
			return true
		}
	}
	return false
}

func (o *Orchestrator[T]) pruneSelectionLocked() {
	for id := range o.selection {
		if !o.onPageLocked(id) {
			delete(o.selection, id)
		}
	}
}

func (o *Orchestrator[T]) selectionLocked() []string {
	out := make([]string, 0, len(o.selection))
	for _, item := range o.results.Items {
		if _, ok := o.selection[item.RecordID()]; ok {
			out = append(out, item.RecordID())
		}
	}
	return out
}
