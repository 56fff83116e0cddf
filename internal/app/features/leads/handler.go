// internal/app/features/leads/handler.go
package leads

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/leadhub/internal/app/features/errors"
	"github.com/dalemusser/leadhub/internal/app/features/shared"
	leadstore "github.com/dalemusser/leadhub/internal/app/store/leads"
	"github.com/dalemusser/leadhub/internal/app/system/auditlog"
	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/dalemusser/leadhub/internal/app/system/editform"
	"github.com/dalemusser/leadhub/internal/app/system/leadimport"
	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"github.com/dalemusser/leadhub/internal/app/system/navigation"
	"github.com/dalemusser/leadhub/internal/app/system/table"
	"github.com/dalemusser/leadhub/internal/domain/models"
	"go.uber.org/zap"
)

// EditLevel is the highest level that may open the full lead editor.
// Memos are editable by everyone who can see the screen.
const EditLevel = 1

var searchFields = []editform.Choice{
	{Value: "phonenumber", Label: "휴대폰 번호"},
	{Value: "username", Label: "이름"},
	{Value: "manager", Label: "담당자"},
	{Value: "type", Label: "DB 유형"},
}

type Handler struct {
	Leads  *leadstore.Store
	Lists  *listview.Registry
	Jobs   *leadimport.Jobs
	Audit  *auditlog.Logger
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger

	PageSize  int
	BulkLimit int
}

func NewHandler(leads *leadstore.Store, lists *listview.Registry, jobs *leadimport.Jobs, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Leads:    leads,
		Lists:    lists,
		Jobs:     jobs,
		Audit:    audit,
		ErrLog:   errLog,
		Log:      logger,
		PageSize: leadstore.PageSize,
	}
}

// BasePath is the mount path of the screen showing scope.
func BasePath(scope leadstore.Scope) string {
	switch scope.Kind {
	case leadstore.ScopeCompany:
		return navigation.PathCompany
	case leadstore.ScopeUnallocated:
		return navigation.PathUnallocated
	case leadstore.ScopeAllocated:
		return navigation.PathAllocated
	}
	return navigation.TypePath(scope.Type)
}

// screenState bundles what every lead handler works with.
type screenState struct {
	user  *auth.SessionUser
	scope leadstore.Scope
	base  string
	list  *listview.Orchestrator[models.Lead]
	hook  *leadstore.Hook
}

func (h *Handler) screen(r *http.Request) screenState {
	u := shared.User(r)
	scope := scopeFrom(r)
	o := listview.Get(h.Lists, u.ID, scope.Key(), func() *listview.Orchestrator[models.Lead] {
		return listview.New[models.Lead](h.PageSize, listview.WithBulkLimit(h.BulkLimit))
	})
	return screenState{
		user:  u,
		scope: scope,
		base:  BasePath(scope),
		list:  o,
		hook:  h.Leads.For(u.Session, scope),
	}
}

func (h *Handler) listVM(r *http.Request, s screenState) shared.ListVM {
	vm := shared.BuildList(r, s.scope.Title(), s.base, s.list.Snapshot(), table.LeadColumns, s.user.Level)
	vm.SearchFields = searchFields
	vm.Leads = true
	vm.Types = editform.TypeChoices()
	return vm
}

// withManagers adds the bulk reassign choices. They are only needed when
// the whole page, toolbar included, is rendered.
func (h *Handler) withManagers(ctx context.Context, r *http.Request, s screenState, vm *shared.ListVM) {
	if shared.IsHTMX(r) && r.Header.Get("HX-Target") == shared.BodyTarget {
		return
	}
	vm.Managers = editform.ManagerChoices(s.hook.Managers(ctx), "")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, s screenState, banner string, isErr bool) {
	vm := h.listVM(r, s)
	vm.SetBanner(banner, isErr)
	shared.Render(w, r, vm)
}

func validSearchField(f string) bool {
	for _, c := range searchFields {
		if c.Value == f {
			return true
		}
	}
	return false
}
