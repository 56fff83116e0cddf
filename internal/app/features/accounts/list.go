package accounts

import (
	"net/http"

	"github.com/dalemusser/leadhub/internal/app/features/shared"
	"github.com/dalemusser/leadhub/internal/app/system/formutil"
	"github.com/dalemusser/leadhub/internal/app/system/paging"
	"github.com/dalemusser/leadhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeList shows the accounts table. An explicit ?page moves to that
// page; otherwise the current page is re-fetched.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, o, hook := h.screen(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Call(), h.Log, "accounts list")
	defer cancel()

	var err error
	if r.URL.Query().Has("page") || !o.Loaded() {
		err = o.SetPage(ctx, hook, paging.ParsePage(r))
	} else {
		err = o.Refresh(ctx, hook)
	}
	if h.ErrLog.HandleExpired(w, r, err) {
		return
	}
	if err != nil {
		h.Log.Warn("accounts fetch failed", zap.Error(err))
	}
	shared.Render(w, r, h.list(r, u, o))
}

type searchInput struct {
	Field   string `form:"field"`
	Keyword string `form:"keyword"`
}

// HandleSearch runs a filtered fetch from page 1.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	u, o, hook := h.screen(r)

	var in searchInput
	if err := formutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad search form", err, "잘못된 요청입니다.", Base)
		return
	}
	if !validSearchField(in.Field) {
		in.Field = searchFields[0].Value
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Call(), h.Log, "accounts search")
	defer cancel()

	err := o.RunSearch(ctx, hook, in.Field, in.Keyword)
	if h.ErrLog.HandleExpired(w, r, err) {
		return
	}
	shared.Render(w, r, h.list(r, u, o))
}

// HandleClear leaves search mode and shows page 1 of the full list.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	u, o, hook := h.screen(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Call(), h.Log, "accounts clear search")
	defer cancel()

	err := o.ClearSearch(ctx, hook)
	if h.ErrLog.HandleExpired(w, r, err) {
		return
	}
	shared.Render(w, r, h.list(r, u, o))
}

// HandleSelect toggles the page checkbox or one row. It makes no remote call.
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	u, o, _ := h.screen(r)

	all, checked, id := shared.ParseSelection(r)
	if all {
		o.ToggleSelectAll(checked)
	} else if id != "" {
		o.ToggleSelectRow(checked, id)
	}
	shared.Render(w, r, h.list(r, u, o))
}
