package accounts

import (
	"net/http"

	"github.com/dalemusser/leadhub/internal/app/features/shared"
	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"github.com/dalemusser/leadhub/internal/app/system/timeouts"
)

// HandleBulkDelete deletes every selected account on the current page.
func (h *Handler) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	u, o, hook := h.screen(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Bulk(), h.Log, "accounts bulk delete")
	defer cancel()

	res, err := o.RunBulk(ctx, hook, listview.ActionDelete, "", hook.Delete)
	if listview.IsValidation(err) {
		vm := h.list(r, u, o)
		vm.SetBanner(err.Error(), true)
		shared.Render(w, r, vm)
		return
	}
	h.Audit.Bulk(r.Context(), r, u.Email, ScreenKey, string(res.Action), "", res.Total, res.Failed)
	if h.ErrLog.HandleExpired(w, r, err) {
		return
	}

	vm := h.list(r, u, o)
	vm.SetBanner(res.Message(), !res.OK())
	shared.Render(w, r, vm)
}
