package leadimport

import (
	"context"
	"fmt"

	"github.com/dalemusser/leadhub/internal/domain/models"
)

// Messages shown after an import.
const (
	MsgPartial = "중복 데이터가 존재해서 일부만 업로드되었습니다."
	MsgDone    = "엑셀 업로드가 완료되었습니다."
)

// CreateFunc creates one lead. A nil lead or a non-nil error marks the
// row as failed; duplicates are expected to come back as (nil, err).
type CreateFunc func(ctx context.Context, l models.Lead) (*models.Lead, error)

// Result summarizes one import run.
type Result struct {
	Total   int
	Created int
	Failed  []Row
}

// Message is the banner text for the run.
func (r Result) Message() string {
	if len(r.Failed) > 0 {
		return MsgPartial
	}
	return MsgDone
}

// Summary is the count line shown under the banner.
func (r Result) Summary() string {
	return fmt.Sprintf("%d건 중 %d건 등록, %d건 실패", r.Total, r.Created, len(r.Failed))
}

// ConfirmMessage is the question shown before rows are uploaded.
func ConfirmMessage(n int) string {
	return fmt.Sprintf("총 %d개의 항목이 있습니다. 업로드 하시겠습니까?", n)
}

// Run creates rows serially, in sheet order. A cancelled context stops the
// run; the remaining rows are counted as failed.
func Run(ctx context.Context, rows []Row, create CreateFunc) Result {
	res := Result{Total: len(rows)}
	for i, row := range rows {
		if ctx.Err() != nil {
			res.Failed = append(res.Failed, rows[i:]...)
			break
		}
		out, err := create(ctx, row.Lead)
		if err != nil || out == nil {
			res.Failed = append(res.Failed, row)
			continue
		}
		res.Created++
	}
	return res
}
