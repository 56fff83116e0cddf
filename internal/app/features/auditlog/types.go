// internal/app/features/auditlog/types.go
package auditlog

import (
	"github.com/dalemusser/leadhub/internal/app/store/audit"
	"github.com/dalemusser/leadhub/internal/app/system/paging"
	"github.com/dalemusser/leadhub/internal/app/system/viewdata"
)

// listItem represents a single audit event row for display.
type listItem struct {
	At        string
	Category  string
	EventType string
	Actor     string
	Subject   string
	IP        string
	Success   bool
	Reason    string
	Details   map[string]string
}

// listData is the view model for the audit trail page.
type listData struct {
	viewdata.BaseVM

	Items []listItem

	// Filters
	Category  string
	EventType string
	Actor     string
	StartDate string
	EndDate   string

	// Filter options
	Categories []categoryOption
	EventTypes []string

	// Pagination
	Page       int
	TotalPages int
	Range      paging.Range
	Links      []pageLink
	PrevURL    string // empty on the first page
	NextURL    string // empty on the last page

	// Unavailable is set when no database is configured.
	Unavailable bool
}

// pageLink is one pager entry with its filtered URL.
type pageLink struct {
	paging.Link
	URL string
}

// categoryOption represents a category for the filter dropdown.
type categoryOption struct {
	Value string
	Label string
}

func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "로그인"},
		{Value: audit.CategoryAdmin, Label: "데이터 변경"},
	}
}

var (
	authEvents = []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailed,
		audit.EventLoginFailedRateLimit,
		audit.EventLoginDeniedLevel,
		audit.EventLogout,
		audit.EventSessionExpired,
	}
	adminEvents = []string{
		audit.EventAccountCreated,
		audit.EventAccountUpdated,
		audit.EventLeadUpdated,
		audit.EventMemoUpdated,
		audit.EventBulkDelete,
		audit.EventBulkManager,
		audit.EventBulkType,
		audit.EventLeadImport,
	}
)

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		return append(all, adminEvents...)
	default:
		return nil
	}
}
