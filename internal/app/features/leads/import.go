package leads

import (
	"net/http"

	"github.com/dalemusser/leadhub/internal/app/features/shared"
	"github.com/dalemusser/leadhub/internal/app/system/leadimport"
	"github.com/dalemusser/leadhub/internal/app/system/limits"
	"github.com/dalemusser/leadhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgNoRows       = "업로드할 항목이 없습니다."
	msgJobNotFound  = "업로드 요청이 만료되었습니다. 파일을 다시 선택하세요."
	msgImportCancel = "업로드가 취소되었습니다."
)

// HandleImport reads an uploaded workbook and asks for confirmation.
// Nothing is sent to the backend until the job is confirmed.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxUploadSize)
	if err := r.ParseMultipartForm(limits.MaxUploadSize); err != nil {
		h.Log.Warn("import upload rejected", zap.Error(err))
		h.render(w, r, s, leadimport.MsgFileError, true)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.render(w, r, s, leadimport.MsgFileError, true)
		return
	}
	defer file.Close()

	rows, err := leadimport.Parse(file, s.scope.DefaultType())
	if err != nil {
		h.Log.Warn("import parse failed", zap.String("screen", s.scope.Key()), zap.Error(err))
		h.render(w, r, s, leadimport.MsgFileError, true)
		return
	}
	if len(rows) == 0 {
		h.render(w, r, s, msgNoRows, true)
		return
	}
	if lines := leadimport.UnknownTypes(rows); len(lines) > 0 {
		h.Log.Warn("import rows with unknown type use the screen default",
			zap.String("screen", s.scope.Key()),
			zap.String("default", s.scope.DefaultType()),
			zap.Ints("lines", lines))
	}

	job := h.Jobs.Put(s.user.ID, s.scope.Key(), rows)
	vm := h.listVM(r, s)
	vm.ImportJob = &shared.ImportVM{JobID: job.ID, Message: leadimport.ConfirmMessage(len(rows))}
	shared.Render(w, r, vm)
}

// HandleImportConfirm creates the rows of a pending job one at a time and
// refreshes the list.
func (h *Handler) HandleImportConfirm(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)

	job, ok := h.Jobs.Take(chi.URLParam(r, "job"), s.user.ID, s.scope.Key())
	if !ok {
		h.render(w, r, s, msgJobNotFound, true)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Import(), h.Log, "lead import")
	defer cancel()

	res := leadimport.Run(ctx, job.Rows, s.hook.Create)
	h.Log.Info("lead import finished",
		zap.String("screen", s.scope.Key()),
		zap.Int("total", res.Total),
		zap.Int("created", res.Created),
		zap.Int("failed", len(res.Failed)))
	h.Audit.LeadImport(r.Context(), r, s.user.Email, s.scope.Key(), res.Total, res.Created, len(res.Failed))

	if err := s.list.Refresh(ctx, s.hook); h.ErrLog.HandleExpired(w, r, err) {
		return
	}
	h.render(w, r, s, res.Message()+" ("+res.Summary()+")", len(res.Failed) > 0)
}

// HandleImportCancel drops a pending job without creating anything.
func (h *Handler) HandleImportCancel(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)
	h.Jobs.Discard(chi.URLParam(r, "job"), s.user.ID)
	h.render(w, r, s, msgImportCancel, false)
}
