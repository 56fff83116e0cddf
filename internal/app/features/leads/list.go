package leads

import (
	"net/http"

	"github.com/dalemusser/leadhub/internal/app/features/shared"
	"github.com/dalemusser/leadhub/internal/app/system/formutil"
	"github.com/dalemusser/leadhub/internal/app/system/paging"
	"github.com/dalemusser/leadhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeList shows the screen. An explicit ?page moves to that page;
// otherwise the current page is re-fetched.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Call(), h.Log, "leads list")
	defer cancel()

	var err error
	if r.URL.Query().Has("page") || !s.list.Loaded() {
		err = s.list.SetPage(ctx, s.hook, paging.ParsePage(r))
	} else {
		err = s.list.Refresh(ctx, s.hook)
	}
	if h.ErrLog.HandleExpired(w, r, err) {
		return
	}
	if err != nil {
		h.Log.Warn("leads fetch failed", zap.String("screen", s.scope.Key()), zap.Error(err))
	}

	vm := h.listVM(r, s)
	h.withManagers(ctx, r, s, &vm)
	shared.Render(w, r, vm)
}

type searchInput struct {
	Field   string `form:"field"`
	Keyword string `form:"keyword"`
}

// HandleSearch runs the network-wide search from page 1.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)

	var in searchInput
	if err := formutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad search form", err, "잘못된 요청입니다.", s.base)
		return
	}
	if !validSearchField(in.Field) {
		in.Field = searchFields[0].Value
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Call(), h.Log, "leads search")
	defer cancel()

	err := s.list.RunSearch(ctx, s.hook, in.Field, in.Keyword)
	if h.ErrLog.HandleExpired(w, r, err) {
		return
	}
	h.render(w, r, s, "", false)
}

// HandleClear leaves search mode and shows page 1 of the screen.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Call(), h.Log, "leads clear search")
	defer cancel()

	err := s.list.ClearSearch(ctx, s.hook)
	if h.ErrLog.HandleExpired(w, r, err) {
		return
	}
	h.render(w, r, s, "", false)
}

// HandleSelect toggles the page checkbox or one row.
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)

	all, checked, id := shared.ParseSelection(r)
	if all {
		s.list.ToggleSelectAll(checked)
	} else if id != "" {
		s.list.ToggleSelectRow(checked, id)
	}
	h.render(w, r, s, "", false)
}
