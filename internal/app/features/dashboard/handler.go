// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/leadhub/internal/app/store/audit"
	"github.com/dalemusser/leadhub/internal/app/store/sessions"
	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/dalemusser/leadhub/internal/app/system/navigation"
	"github.com/dalemusser/leadhub/internal/app/system/table"
	"github.com/dalemusser/leadhub/internal/app/system/timeouts"
	"github.com/dalemusser/leadhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// activeWindow is how recent last_active_at must be for a session to count
// as active on the overview.
const activeWindow = 15 * time.Minute

const recentLogins = 5

// failedLoginWindow is the span of the failed-login counter.
const failedLoginWindow = 24 * time.Hour

type Handler struct {
	Sessions *sessions.Store // nil hides the ledger panels
	Audits   *audit.Store    // nil hides the activity panels
	Log      *zap.Logger
}

func NewHandler(sessStore *sessions.Store, audits *audit.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions: sessStore,
		Audits:   audits,
		Log:      logger,
	}
}

// Shortcut is one screen link on the overview.
type Shortcut struct {
	Group string
	Label string
	Path  string
}

type loginRow struct {
	At        string
	IP        string
	Open      bool
	EndReason string
}

type activityRow struct {
	At        string
	EventType string
	Subject   string
}

type dashboardData struct {
	viewdata.BaseVM
	Shortcuts []Shortcut

	HasLedger      bool
	ActiveSessions int64
	Recent         []loginRow

	HasAudit     bool
	Activity     []activityRow
	ShowFailed   bool // head office only
	FailedLogins int64
}

// Shortcuts flattens the menu a user at level sees, leaving out the
// overview itself.
func Shortcuts(level int) []Shortcut {
	var out []Shortcut
	var walk func(items []navigation.Item, group string)
	walk = func(items []navigation.Item, group string) {
		for _, it := range items {
			if it.IsGroup() {
				walk(it.Children, it.Label)
				continue
			}
			if it.Path == navigation.PathDashboard {
				continue
			}
			out = append(out, Shortcut{Group: group, Label: it.Label, Path: it.Path})
		}
	}
	walk(navigation.Filter(navigation.Menu, level), "")
	return out
}

func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	data := dashboardData{
		BaseVM:    viewdata.NewBaseVM(r, "Dashboard", "/dashboard"),
		Shortcuts: Shortcuts(u.Level),
	}

	if h.Sessions != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ledger())
		defer cancel()

		data.HasLedger = true
		n, err := h.Sessions.CountOpen(ctx, activeWindow)
		if err != nil {
			h.Log.Warn("dashboard: count open sessions", zap.Error(err))
		}
		data.ActiveSessions = n

		recent, err := h.Sessions.RecentByEmail(ctx, u.Email, recentLogins)
		if err != nil {
			h.Log.Warn("dashboard: recent logins", zap.Error(err), zap.String("email", u.Email))
		}
		for _, s := range recent {
			data.Recent = append(data.Recent, loginRow{
				At:        s.LoginAt.In(table.DisplayZone).Format("2006-01-02 15:04"),
				IP:        s.IP,
				Open:      s.Open(),
				EndReason: s.EndReason,
			})
		}
	}

	if h.Audits != nil {
		h.fillActivity(r.Context(), &data, u)
	}

	h.Log.Debug("dashboard served", zap.String("email", u.Email), zap.Int("level", u.Level))

	templates.Render(w, r, "dashboard_page", data)
}

// fillActivity adds the user's own recent changes and, for head office,
// the failed-login count of the last day.
func (h *Handler) fillActivity(ctx context.Context, data *dashboardData, u *auth.SessionUser) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Ledger())
	defer cancel()

	data.HasAudit = true
	events, err := h.Audits.GetByActor(ctx, u.Email, recentLogins)
	if err != nil {
		h.Log.Warn("dashboard: recent activity", zap.Error(err), zap.String("email", u.Email))
	}
	for _, e := range events {
		data.Activity = append(data.Activity, activityRow{
			At:        e.Timestamp.In(table.DisplayZone).Format("2006-01-02 15:04"),
			EventType: e.EventType,
			Subject:   e.Subject,
		})
	}

	if u.Level > 1 {
		return
	}
	data.ShowFailed = true
	n, err := h.Audits.CountFailedLogins(ctx, time.Now().Add(-failedLoginWindow))
	if err != nil {
		h.Log.Warn("dashboard: count failed logins", zap.Error(err))
	}
	data.FailedLogins = n
}
