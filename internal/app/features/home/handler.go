package home

import (
	"net/http"

	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/dalemusser/leadhub/internal/app/system/navigation"
	"go.uber.org/zap"
)

// Handler sends visitors of the site root where they belong.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeRoot redirects to the dashboard when a dashboard user is signed in,
// otherwise to the login page.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok && u.Level > 0 && u.Level <= auth.DashboardLevel {
		http.Redirect(w, r, navigation.PathDashboard, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
