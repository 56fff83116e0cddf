// internal/app/features/accounts/handler.go
package accounts

import (
	"net/http"

	uierrors "github.com/dalemusser/leadhub/internal/app/features/errors"
	"github.com/dalemusser/leadhub/internal/app/features/shared"
	accountstore "github.com/dalemusser/leadhub/internal/app/store/accounts"
	"github.com/dalemusser/leadhub/internal/app/system/auditlog"
	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/dalemusser/leadhub/internal/app/system/editform"
	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"github.com/dalemusser/leadhub/internal/app/system/navigation"
	"github.com/dalemusser/leadhub/internal/app/system/table"
	"github.com/dalemusser/leadhub/internal/domain/models"
	"go.uber.org/zap"
)

// Base is the mount path of the accounts screen.
const Base = navigation.PathAccounts

// ScreenKey names the screen in the list registry and the audit log.
const ScreenKey = "accounts"

// EditLevel is the highest level that may edit accounts.
const EditLevel = 3

const title = "영업팀 관리"

var searchFields = []editform.Choice{
	{Value: "email", Label: "이메일"},
	{Value: "username", Label: "이름"},
	{Value: "firstname", Label: "First name"},
	{Value: "lastname", Label: "Last name"},
	{Value: "status", Label: "상태"},
	{Value: "referrer", Label: "책임자"},
	{Value: "userLevel", Label: "레벨"},
}

type Handler struct {
	Accounts *accountstore.Store
	Lists    *listview.Registry
	Audit    *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger

	PageSize  int
	BulkLimit int
}

func NewHandler(accounts *accountstore.Store, lists *listview.Registry, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts: accounts,
		Lists:    lists,
		Audit:    audit,
		ErrLog:   errLog,
		Log:      logger,
		PageSize: accountstore.PageSize,
	}
}

// screen returns the caller, their accounts table state and a hook bound
// to their credential.
func (h *Handler) screen(r *http.Request) (*auth.SessionUser, *listview.Orchestrator[models.Account], *accountstore.Hook) {
	u := shared.User(r)
	o := listview.Get(h.Lists, u.ID, ScreenKey, func() *listview.Orchestrator[models.Account] {
		return listview.New[models.Account](h.PageSize, listview.WithBulkLimit(h.BulkLimit))
	})
	return u, o, h.Accounts.For(u.Session)
}

func (h *Handler) list(r *http.Request, u *auth.SessionUser, o *listview.Orchestrator[models.Account]) shared.ListVM {
	vm := shared.BuildList(r, title, Base, o.Snapshot(), table.AccountColumns, u.Level)
	vm.SearchFields = searchFields
	vm.CanCreate = true
	return vm
}

func validSearchField(f string) bool {
	for _, c := range searchFields {
		if c.Value == f {
			return true
		}
	}
	return false
}
