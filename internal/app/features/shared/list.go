// Package shared holds the list screen view model and the request
// plumbing common to the accounts and lead screens.
package shared

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/dalemusser/leadhub/internal/app/system/editform"
	"github.com/dalemusser/leadhub/internal/app/system/gateway"
	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"github.com/dalemusser/leadhub/internal/app/system/paging"
	"github.com/dalemusser/leadhub/internal/app/system/table"
	"github.com/dalemusser/leadhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// BodyTarget is the element id htmx swaps with the list body snippet.
const BodyTarget = "list-body"

// ListVM is the view model of a list screen.
type ListVM struct {
	viewdata.BaseVM

	Base         string // screen root path, e.g. /dashboard/db/els
	Table        table.View
	Page         int
	TotalPages   int
	PrevPage     int // 0 on the first page
	NextPage     int // 0 on the last page
	Links        []paging.Link
	Range        paging.Range
	SearchFields []editform.Choice
	Filter       listview.Filter
	SearchMode   bool
	Fetching     bool

	// Banner is a one-shot message (bulk result, validation failure).
	Banner      string
	BannerError bool
	// FetchError is the last failed fetch, shown with a retry link.
	FetchError string
	RetryURL   string

	// Lead screens only.
	Leads     bool
	Managers  []editform.Choice
	Types     []editform.Choice
	ImportJob *ImportVM

	// Accounts screen only.
	CanCreate bool

	// CloseModal empties the modal container out of band.
	CloseModal bool
}

// ImportVM is the confirmation step of a spreadsheet import.
type ImportVM struct {
	JobID   string
	Message string
}

// BuildList fills a ListVM from the orchestrator state for a viewer at level.
func BuildList[T listview.Record](r *http.Request, title, base string, snap listview.Snapshot[T], cols []table.Column[T], level int) ListVM {
	vm := ListVM{
		BaseVM:     viewdata.NewBaseVM(r, title, "/dashboard"),
		Base:       base,
		Table:      table.Render(snap.Items, cols, snap.Selected, level),
		Page:       snap.Page,
		TotalPages: snap.TotalPages,
		Links:      snap.Links,
		Range:      snap.Range,
		Filter:     snap.Filter,
		SearchMode: snap.SearchMode,
		Fetching:   snap.Status == listview.Loading,
	}
	if snap.Page > 1 {
		vm.PrevPage = snap.Page - 1
	}
	if snap.Page < snap.TotalPages {
		vm.NextPage = snap.Page + 1
	}
	if snap.Err != nil {
		vm.FetchError = gateway.Message(snap.Err)
		vm.RetryURL = base + "?page=" + strconv.Itoa(snap.Page)
	}
	return vm
}

// SetBanner shows msg above the table.
func (vm *ListVM) SetBanner(msg string, isErr bool) {
	vm.Banner = msg
	vm.BannerError = isErr
}

// Render writes the list page. htmx requests aimed at the list body get
// only the body snippet.
func Render(w http.ResponseWriter, r *http.Request, vm ListVM) {
	if IsHTMX(r) && (r.Header.Get("HX-Target") == BodyTarget || vm.CloseModal) {
		templates.RenderSnippet(w, "list_body", vm)
		return
	}
	templates.Render(w, r, "list_page", vm)
}

// RenderEdit writes an edit modal, or a full page outside htmx.
func RenderEdit(w http.ResponseWriter, r *http.Request, vm EditVM) {
	if IsHTMX(r) {
		RetargetModal(w)
		templates.RenderSnippet(w, "edit_modal", vm)
		return
	}
	templates.Render(w, r, "edit_page", vm)
}

// RenderView writes a read-only modal, or a full page outside htmx.
func RenderView(w http.ResponseWriter, r *http.Request, vm ViewVM) {
	if IsHTMX(r) {
		RetargetModal(w)
		templates.RenderSnippet(w, "view_modal", vm)
		return
	}
	templates.Render(w, r, "view_page", vm)
}

// IsHTMX reports whether r was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") != ""
}

// User returns the signed-in user. Routes are mounted behind
// RequireSignedIn, so a missing user is a wiring error.
func User(r *http.Request) *auth.SessionUser {
	u, _ := auth.CurrentUser(r)
	return u
}

// ParseSelection reads the select form: all=on|off toggles the page,
// otherwise id plus checked=on|off toggles one row.
func ParseSelection(r *http.Request) (all bool, checked bool, id string) {
	if v := r.PostFormValue("all"); v != "" {
		return true, v == "on", ""
	}
	return false, r.PostFormValue("checked") == "on", r.PostFormValue("id")
}
