package leads

import (
	"context"
	"net/http"

	leadstore "github.com/dalemusser/leadhub/internal/app/store/leads"
	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"github.com/dalemusser/leadhub/internal/app/system/normalize"
	"github.com/dalemusser/leadhub/internal/app/system/timeouts"
	"github.com/dalemusser/leadhub/internal/domain/models"
)

// HandleBulkDelete deletes the selected leads.
func (h *Handler) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)
	h.runBulk(w, r, s, listview.ActionDelete, "", s.hook.Delete)
}

// HandleBulkManager hands the selected leads to one manager.
func (h *Handler) HandleBulkManager(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)
	target := normalize.Name(r.PostFormValue("target"))
	h.runBulk(w, r, s, listview.ActionManager, target, func(ctx context.Context, id string) error {
		_, err := s.hook.Update(ctx, id, leadstore.ManagerPatch(target))
		return err
	})
}

// HandleBulkType moves the selected leads to another category.
func (h *Handler) HandleBulkType(w http.ResponseWriter, r *http.Request) {
	s := h.screen(r)
	target := normalize.Choice(r.PostFormValue("target"))
	if target != "" && !models.IsLeadType(target) {
		h.render(w, r, s, leadstore.MsgUnknownType, true)
		return
	}
	h.runBulk(w, r, s, listview.ActionType, target, func(ctx context.Context, id string) error {
		_, err := s.hook.Update(ctx, id, leadstore.TypePatch(target))
		return err
	})
}

func (h *Handler) runBulk(w http.ResponseWriter, r *http.Request, s screenState, action listview.Action, target string, fn func(context.Context, string) error) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Bulk(), h.Log, "leads bulk "+string(action))
	defer cancel()

	res, err := s.list.RunBulk(ctx, s.hook, action, target, fn)
	if listview.IsValidation(err) {
		h.render(w, r, s, err.Error(), true)
		return
	}
	h.Audit.Bulk(r.Context(), r, s.user.Email, s.scope.Key(), string(action), target, res.Total, res.Failed)
	if h.ErrLog.HandleExpired(w, r, err) {
		return
	}
	h.render(w, r, s, res.Message(), !res.OK())
}
