// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/dalemusser/leadhub/internal/app/system/navigation"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the title bar and page titles.
const SiteName = "LeadHub"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type leadsPage struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := leadsPage{
//	    BaseVM: viewdata.NewBaseVM(r, "본사 DB 관리", "/dashboard"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	Email      string
	Level      int
	Menu       []navigation.Item

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	CSRFToken string

	// Loading is true while backend calls are in flight when the page is built.
	Loading bool
}

// LoadingSource reports whether backend calls are outstanding.
type LoadingSource func() bool

var loading LoadingSource

// SetLoadingSource installs the in-flight indicator.
// Call this once at startup from bootstrap after the gateway is built.
func SetLoadingSource(fn LoadingSource) {
	loading = fn
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    SiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.Email = u.Email
		vm.Level = u.Level
		vm.Menu = navigation.For(u.Level, r.URL.Path)
	}
	if loading != nil {
		vm.Loading = loading()
	}
	return vm
}
