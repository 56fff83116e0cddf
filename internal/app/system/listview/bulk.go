// internal/app/system/listview/bulk.go
package listview

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

// Action names a bulk operation.
type Action string

const (
	ActionDelete  Action = "delete"
	ActionManager Action = "manager"
	ActionType    Action = "type"
)

var bulkItems = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "leadhub",
	Subsystem: "bulk",
	Name:      "items_total",
	Help:      "Per-record calls issued by bulk actions, by action and result.",
}, []string{"action", "result"})

// Messages shown for bulk actions.
var (
	msgEmptySelection = map[Action]string{
		ActionDelete:  "삭제할 사용자를 선택하세요.",
		ActionManager: "배정할 사용자를 선택하세요.",
		ActionType:    "변경할 사용자를 선택하세요.",
	}
	msgNoTarget = map[Action]string{
		ActionManager: "담당자를 선택하세요.",
		ActionType:    "변경할 DB 유형을 선택하세요.",
	}
	msgDone = map[Action]string{
		ActionDelete:  "삭제가 완료되었습니다.",
		ActionManager: "담당자 배정이 완료되었습니다.",
		ActionType:    "DB 유형 변경이 완료되었습니다.",
	}
	msgFailed = map[Action]string{
		ActionDelete:  "삭제 중 오류가 발생했습니다.",
		ActionManager: "담당자 배정 중 오류가 발생했습니다.",
		ActionType:    "DB 유형 변경 중 오류가 발생했습니다.",
	}
)

// BulkResult is the aggregate outcome of a bulk action.
type BulkResult struct {
	Action Action
	Target string
	Total  int
	Failed int
}

// Message summarizes the result for the page banner.
func (r BulkResult) Message() string {
	if r.Failed == 0 {
		return msgDone[r.Action]
	}
	return fmt.Sprintf("%s (%d건 중 %d건 실패)", msgFailed[r.Action], r.Total, r.Failed)
}

// OK reports whether every per-record call succeeded.
func (r BulkResult) OK() bool { return r.Failed == 0 }

// Validate checks the pre-flight conditions of action without side effects.
func (o *Orchestrator[T]) Validate(action Action, target string) error {
	if len(o.Selection()) == 0 {
		return Invalid(msgEmptySelection[action])
	}
	if action != ActionDelete && target == "" {
		return Invalid(msgNoTarget[action])
	}
	return nil
}

// RunBulk applies fn to every selected id.
//
// Calls fan out with at most the configured limit in flight and all of
// them are awaited. Failures are counted, never retried. Afterwards the
// selection is cleared and the current page is re-fetched; a fetch error
// is returned alongside the result.
func (o *Orchestrator[T]) RunBulk(ctx context.Context, f Fetcher[T], action Action, target string, fn func(ctx context.Context, id string) error) (BulkResult, error) {
	if err := o.Validate(action, target); err != nil {
		return BulkResult{Action: action, Target: target}, err
	}

	ids := o.Selection()
	o.mu.Lock()
	limit := o.bulkLimit
	o.mu.Unlock()

	var failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(limit)
	for _, id := range ids {
		g.Go(func() error {
			if err := fn(ctx, id); err != nil {
				failed.Add(1)
				bulkItems.WithLabelValues(string(action), "error").Inc()
				return nil
			}
			bulkItems.WithLabelValues(string(action), "ok").Inc()
			return nil
		})
	}
	_ = g.Wait()

	res := BulkResult{Action: action, Target: target, Total: len(ids), Failed: int(failed.Load())}

	o.mu.Lock()
	o.clearSelectionLocked()
	o.mu.Unlock()

	return res, o.fetch(ctx, f)
}
