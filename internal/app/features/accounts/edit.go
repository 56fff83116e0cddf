package accounts

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/leadhub/internal/app/features/errors"
	"github.com/dalemusser/leadhub/internal/app/features/shared"
	accountstore "github.com/dalemusser/leadhub/internal/app/store/accounts"
	"github.com/dalemusser/leadhub/internal/app/system/editform"
	"github.com/dalemusser/leadhub/internal/app/system/formutil"
	"github.com/dalemusser/leadhub/internal/app/system/timeouts"
	"github.com/dalemusser/leadhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgCreated     = "계정이 생성되었습니다."
	msgUpdated     = "수정이 완료되었습니다."
	msgLevelRefuse = "자신보다 높은 레벨은 부여할 수 없습니다."
	msgNotOnPage   = "현재 페이지에 없는 계정입니다."
	msgNoEdit      = "계정을 수정할 권한이 없습니다."
)

type createInput struct {
	Email           string `form:"email" validate:"required,loginemail"`
	Username        string `form:"username" validate:"required,max=100"`
	FirstName       string `form:"firstname" validate:"max=100"`
	LastName        string `form:"lastname" validate:"max=100"`
	Password        string `form:"password" validate:"required"`
	PasswordConfirm string `form:"passwordConfirm"`
	Referrer        string `form:"referrer" validate:"max=100"`
}

var createMessages = map[string]string{
	"Email.required":    "이메일을 입력하세요.",
	"Email.loginemail":  "올바른 이메일 주소를 입력하세요.",
	"Username.required": "이름을 입력하세요.",
	"Password.required": "비밀번호를 입력하세요.",
}

// HandleCreate registers a new account. Validation failures, a password
// mismatch included, are shown in the banner without a remote call.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, o, hook := h.screen(r)

	var in createInput
	if err := formutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad create form", err, "잘못된 요청입니다.", Base)
		return
	}
	if msg := formutil.Check(&in, createMessages, "입력값을 확인하세요."); msg != "" {
		vm := h.list(r, u, o)
		vm.SetBanner(msg, true)
		shared.Render(w, r, vm)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Call(), h.Log, "create account")
	defer cancel()

	_, err := hook.Create(ctx, accountstore.Draft{
		Email:           in.Email,
		Username:        in.Username,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Password:        in.Password,
		PasswordConfirm: in.PasswordConfirm,
		Referrer:        in.Referrer,
	})
	if h.ErrLog.HandleExpired(w, r, err) {
		return
	}
	vm := h.list(r, u, o)
	if err != nil {
		vm.SetBanner(hook.LastError(), true)
		shared.Render(w, r, vm)
		return
	}

	h.Audit.AccountCreated(r.Context(), r, u.Email, in.Email)
	if err := o.Refresh(ctx, hook); h.ErrLog.HandleExpired(w, r, err) {
		return
	}
	vm = h.list(r, u, o)
	vm.SetBanner(msgCreated, false)
	shared.Render(w, r, vm)
}

func (h *Handler) editForm(level int, a models.Account) *editform.Form[models.Account] {
	return editform.New(a, editform.AccountFields(level)).WithGuard(editform.AccountLevelGuard(level))
}

// ServeEdit opens the edit modal for an account on the current page.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	u, o, _ := h.screen(r)
	if u.Level > EditLevel {
		uierrors.RenderForbidden(w, r, msgNoEdit, Base)
		return
	}
	id := chi.URLParam(r, "id")
	a, ok := o.Find(id)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "account not on current page", nil, msgNotOnPage, Base)
		return
	}
	f := h.editForm(u.Level, a)
	shared.RenderEdit(w, r, shared.NewEditVM(r, "계정 수정", Base+"/"+id+"/edit", Base, f.Inputs()))
}

// HandleEdit saves the modal. Granting a level above the editor's own
// closes the modal without saving.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	u, o, hook := h.screen(r)
	if u.Level > EditLevel {
		uierrors.RenderForbidden(w, r, msgNoEdit, Base)
		return
	}
	id := chi.URLParam(r, "id")
	a, ok := o.Find(id)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "account not on current page", nil, msgNotOnPage, Base)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad edit form", err, "잘못된 요청입니다.", Base)
		return
	}

	f := h.editForm(u.Level, a)
	action := Base + "/" + id + "/edit"
	if err := f.Apply(r.PostForm); err != nil {
		vm := shared.NewEditVM(r, "계정 수정", action, Base, f.Inputs())
		vm.SetError(err.Error())
		shared.RenderEdit(w, r, vm)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Call(), h.Log, "update account")
	defer cancel()

	var level string
	outcome, err := f.Save(ctx, func(ctx context.Context, a models.Account) error {
		level = a.UserLevel.String()
		return hook.Update(ctx, id, accountstore.Patch{
			Username:  a.Username,
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Email:     a.Email,
			Status:    a.Status,
			Referrer:  a.Referrer,
			UserLevel: a.UserLevel.Int(),
		})
	})
	if h.ErrLog.HandleExpired(w, r, err) {
		return
	}
	if err != nil {
		h.Log.Warn("update account failed", zap.String("id", id), zap.Error(err))
		vm := shared.NewEditVM(r, "계정 수정", action, Base, f.Inputs())
		vm.SetError(hook.LastError())
		shared.RenderEdit(w, r, vm)
		return
	}

	banner, isErr := msgUpdated, false
	if outcome == editform.Closed {
		banner, isErr = msgLevelRefuse, true
	} else {
		h.Audit.AccountUpdated(r.Context(), r, u.Email, id, level)
		if err := o.Refresh(ctx, hook); h.ErrLog.HandleExpired(w, r, err) {
			return
		}
	}
	vm := h.list(r, u, o)
	vm.SetBanner(banner, isErr)
	vm.CloseModal = true
	shared.Render(w, r, vm)
}
