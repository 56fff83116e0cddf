// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/leadhub/internal/app/store/sessions"
	"github.com/dalemusser/leadhub/internal/app/system/auditlog"
	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Audit      *auditlog.Logger
	Sessions   *sessions.Store
	Lists      *listview.Registry
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, sessStore *sessions.Store, lists *listview.Registry, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Audit:      audit,
		Sessions:   sessStore,
		Lists:      lists,
	}
}

// ServeLogout handles GET /logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	id, email := h.who(r)
	h.end(r, id, sessions.EndLogout)
	h.Audit.Logout(r.Context(), r, id, email)
	h.clearCookie(w, r)

	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Expire tears down a session whose backend token has expired. It writes
// no response body; the caller redirects.
func (h *Handler) Expire(w http.ResponseWriter, r *http.Request) {
	id, email := h.who(r)
	h.end(r, id, sessions.EndExpired)
	h.Audit.SessionExpired(r.Context(), r, id, email)
	h.clearCookie(w, r)
}

func (h *Handler) who(r *http.Request) (id, email string) {
	if u, ok := auth.CurrentUser(r); ok {
		return u.ID, u.Email
	}
	if s, email, ok := h.SessionMgr.Load(r); ok {
		return s.ID(), email
	}
	return "", ""
}

// end closes the ledger entry and drops the cached list state of id.
func (h *Handler) end(r *http.Request, id, reason string) {
	if id == "" {
		return
	}
	if h.Lists != nil {
		h.Lists.DropSession(id)
	}
	if h.Sessions == nil {
		return
	}
	// the request may already be cancelled when the backend timed out
	ctx := context.WithoutCancel(r.Context())
	if err := h.Sessions.Close(ctx, id, reason); err != nil && !errors.Is(err, sessions.ErrNotFound) {
		h.Log.Warn("close session ledger entry", zap.String("session_id", id), zap.String("reason", reason), zap.Error(err))
	}
}

// clearCookie writes a deletion cookie that matches the store settings.
func (h *Handler) clearCookie(w http.ResponseWriter, r *http.Request) {
	session, err := h.SessionMgr.GetSession(r)
	if err != nil {
		h.Log.Warn("session decode failed during logout", zap.Error(err))
	}
	if opts := h.SessionMgr.Store().Options; opts != nil {
		session.Options.Domain = opts.Domain
		session.Options.Path = opts.Path
		session.Options.Secure = opts.Secure
		session.Options.HttpOnly = opts.HttpOnly
		session.Options.SameSite = opts.SameSite
	}
	session.Values = map[any]any{}
	session.Options.MaxAge = -1

	if err := session.Save(r, w); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
}
