// internal/app/features/heartbeat/handler.go
package heartbeat

import (
	"context"
	"net/http"

	"github.com/dalemusser/leadhub/internal/app/store/sessions"
	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/dalemusser/leadhub/internal/app/system/ratelimit"
	"github.com/dalemusser/leadhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler keeps the login ledger's last_active_at current for open pages.
type Handler struct {
	Sessions *sessions.Store
	Log      *zap.Logger
}

// NewHandler creates a new heartbeat handler.
func NewHandler(sessStore *sessions.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Sessions: sessStore,
		Log:      logger,
	}
}

// ServeHeartbeat handles POST /heartbeat.
// A ledger entry closed as inactive while the page stayed open is reopened
// under the same session id. Failures are logged and never reach the page.
func (h *Handler) ServeHeartbeat(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok || h.Sessions == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ledger())
	defer cancel()

	open, err := h.Sessions.Touch(ctx, u.ID)
	if err != nil {
		h.Log.Warn("failed to update session last_active_at",
			zap.Error(err),
			zap.String("session_id", u.ID))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if !open {
		if _, err := h.Sessions.Create(ctx, u.ID, u.Email, u.Level, ratelimit.ClientIP(r), r.UserAgent()); err != nil {
			h.Log.Warn("failed to reopen ledger session after inactivity",
				zap.Error(err),
				zap.String("session_id", u.ID))
		} else {
			h.Log.Info("reopened ledger session after inactivity timeout",
				zap.String("email", u.Email),
				zap.String("session_id", u.ID))
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
