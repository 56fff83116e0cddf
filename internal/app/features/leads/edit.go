package leads

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/leadhub/internal/app/features/errors"
	"github.com/dalemusser/leadhub/internal/app/features/shared"
	leadstore "github.com/dalemusser/leadhub/internal/app/store/leads"
	"github.com/dalemusser/leadhub/internal/app/system/editform"
	"github.com/dalemusser/leadhub/internal/app/system/formutil"
	"github.com/dalemusser/leadhub/internal/app/system/timeouts"
	"github.com/dalemusser/leadhub/internal/app/system/viewdata"
	"github.com/dalemusser/leadhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgCreated   = "DB가 등록되었습니다."
	msgUpdated   = "수정이 완료되었습니다."
	msgMemoSaved = "상담 기록이 저장되었습니다."
	msgNotOnPage = "현재 페이지에 없는 DB입니다."
	msgNoEdit    = "DB를 수정할 권한이 없습니다."
	msgDuplicate = "이미 등록된 휴대폰 번호입니다."
)

type createInput struct {
	Username    string `form:"username" validate:"max=100"`
	PhoneNumber string `form:"phonenumber" validate:"required,max=30"`
	Sex         string `form:"sex" validate:"max=20"`
	IncomePath  string `form:"incomepath" validate:"max=100"`
	Memo        string `form:"memo"`
	Type        string `form:"type" validate:"omitempty,leadtype"`
	Manager     string `form:"manager" validate:"max=100"`
}

var createMessages = map[string]string{
	"PhoneNumber.required": "휴대폰 번호를 입력하세요.",
	"Type.leadtype":        leadstore.MsgUnknownType,
}

// HandleCreate adds one lead by hand. Rows without a type take the
// screen's category.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)

	var in createInput
	if err := formutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad create form", err, "잘못된 요청입니다.", s.base)
		return
	}
	if msg := formutil.Check(&in, createMessages, "입력값을 확인하세요."); msg != "" {
		h.render(w, r, s, msg, true)
		return
	}
	if in.Type == "" {
		in.Type = s.scope.DefaultType()
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Call(), h.Log, "create lead")
	defer cancel()

	_, err := s.hook.Create(ctx, models.Lead{
		Username:    in.Username,
		PhoneNumber: in.PhoneNumber,
		Sex:         in.Sex,
		IncomePath:  in.IncomePath,
		Memo:        in.Memo,
		Type:        in.Type,
		Manager:     in.Manager,
	})
	switch {
	case h.ErrLog.HandleExpired(w, r, err):
		return
	case errors.Is(err, leadstore.ErrDuplicateSkip):
		h.render(w, r, s, msgDuplicate, true)
		return
	case err != nil:
		h.render(w, r, s, s.hook.LastError(), true)
		return
	}

	if err := s.list.Refresh(ctx, s.hook); h.ErrLog.HandleExpired(w, r, err) {
		return
	}
	h.render(w, r, s, msgCreated, false)
}

func (h *Handler) findOnPage(w http.ResponseWriter, r *http.Request, s screenState) (models.Lead, string, bool) {
	id := chi.URLParam(r, "id")
	l, ok := s.list.Find(id)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "lead not on current page", nil, msgNotOnPage, s.base)
	}
	return l, id, ok
}

// ServeEdit opens the full editor. Head office only.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)
	if s.user.Level > EditLevel {
		uierrors.RenderForbidden(w, r, msgNoEdit, s.base)
		return
	}
	l, id, ok := h.findOnPage(w, r, s)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Call(), h.Log, "lead managers")
	defer cancel()

	f := editform.New(l, editform.LeadFields(l, s.hook.Managers(ctx)))
	shared.RenderEdit(w, r, shared.NewEditVM(r, "DB 수정", s.base+"/"+id+"/edit", s.base, f.Inputs()))
}

// HandleEdit saves the full editor.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)
	if s.user.Level > EditLevel {
		uierrors.RenderForbidden(w, r, msgNoEdit, s.base)
		return
	}
	l, id, ok := h.findOnPage(w, r, s)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad edit form", err, "잘못된 요청입니다.", s.base)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Call(), h.Log, "update lead")
	defer cancel()

	orig := l
	f := editform.New(l, editform.LeadFields(l, s.hook.Managers(ctx)))
	h.saveForm(w, r, s, f, "DB 수정", s.base+"/"+id+"/edit", func(ctx context.Context, l models.Lead) error {
		_, err := s.hook.Update(ctx, id, editPatch(orig, l))
		return err
	}, func() {
		h.Audit.LeadUpdated(r.Context(), r, s.user.Email, id)
	}, msgUpdated)
}

// editPatch carries every editable field of draft. A legacy type left
// unchanged is not sent, since the backend only accepts known types.
func editPatch(orig, draft models.Lead) leadstore.Patch {
	p := leadstore.FromLead(draft)
	if draft.Type == orig.Type && !models.IsLeadType(draft.Type) {
		p.Type = nil
	}
	return p
}

// ServeMemo opens the memo modal.
func (h *Handler) ServeMemo(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)
	l, id, ok := h.findOnPage(w, r, s)
	if !ok {
		return
	}
	f := editform.New(l, editform.MemoFields())
	shared.RenderEdit(w, r, shared.NewEditVM(r, "상담 기록", s.base+"/"+id+"/memo", s.base, f.Inputs()))
}

// HandleMemo saves only the memo.
func (h *Handler) HandleMemo(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)
	l, id, ok := h.findOnPage(w, r, s)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad memo form", err, "잘못된 요청입니다.", s.base)
		return
	}

	f := editform.New(l, editform.MemoFields())
	h.saveForm(w, r, s, f, "상담 기록", s.base+"/"+id+"/memo", func(ctx context.Context, l models.Lead) error {
		_, err := s.hook.Update(ctx, id, leadstore.MemoPatch(l.Memo))
		return err
	}, func() {
		h.Audit.MemoUpdated(r.Context(), r, s.user.Email, id)
	}, msgMemoSaved)
}

// ServeSMS shows the received message read-only.
func (h *Handler) ServeSMS(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)
	l, _, ok := h.findOnPage(w, r, s)
	if !ok {
		return
	}
	shared.RenderView(w, r, shared.ViewVM{
		BaseVM:  viewdata.NewBaseVM(r, "문자", s.base),
		Heading: "문자",
		Body:    editform.SMSView(l),
		Cancel:  s.base,
	})
}

// saveForm applies the posted values, saves, and either re-renders the
// modal with the error or closes it and refreshes the list.
func (h *Handler) saveForm(w http.ResponseWriter, r *http.Request, s screenState, f *editform.Form[models.Lead], heading, action string,
	onSave func(context.Context, models.Lead) error, audit func(), done string) {
	if err := f.Apply(r.PostForm); err != nil {
		vm := shared.NewEditVM(r, heading, action, s.base, f.Inputs())
		vm.SetError(err.Error())
		shared.RenderEdit(w, r, vm)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Call(), h.Log, "save lead")
	defer cancel()

	_, err := f.Save(ctx, onSave)
	if h.ErrLog.HandleExpired(w, r, err) {
		return
	}
	if err != nil {
		h.Log.Warn("save lead failed", zap.String("action", action), zap.Error(err))
		vm := shared.NewEditVM(r, heading, action, s.base, f.Inputs())
		vm.SetError(s.hook.LastError())
		shared.RenderEdit(w, r, vm)
		return
	}
	audit()

	if err := s.list.Refresh(ctx, s.hook); h.ErrLog.HandleExpired(w, r, err) {
		return
	}
	vm := h.listVM(r, s)
	vm.SetBanner(done, false)
	vm.CloseModal = true
	shared.Render(w, r, vm)
}
