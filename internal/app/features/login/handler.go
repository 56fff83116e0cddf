// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/leadhub/internal/app/features/errors"
	accountstore "github.com/dalemusser/leadhub/internal/app/store/accounts"
	"github.com/dalemusser/leadhub/internal/app/store/sessions"
	"github.com/dalemusser/leadhub/internal/app/system/auditlog"
	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/dalemusser/leadhub/internal/app/system/formutil"
	"github.com/dalemusser/leadhub/internal/app/system/gateway"
	"github.com/dalemusser/leadhub/internal/app/system/navigation"
	"github.com/dalemusser/leadhub/internal/app/system/normalize"
	"github.com/dalemusser/leadhub/internal/app/system/ratelimit"
	"github.com/dalemusser/leadhub/internal/app/system/timeouts"
	"github.com/dalemusser/leadhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Messages shown on the login form.
const (
	MsgRequired     = "Email and password are required."
	MsgInvalidEmail = "Please enter a valid email address."
	MsgFailed       = "Login failed."
	msgSaveFailed   = "Unable to create session. Please try again."
)

type Handler struct {
	Accounts   *accountstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Audit      *auditlog.Logger
	Sessions   *sessions.Store // login ledger; nil disables it
	Limiter    *ratelimit.LoginLimiter
	Log        *zap.Logger
}

func NewHandler(accounts *accountstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, sessStore *sessions.Store, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:   accounts,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Audit:      audit,
		Sessions:   sessStore,
		Limiter:    limiter,
		Log:        logger,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Email     string
	ReturnURL string
}

type loginInput struct {
	Email     string `form:"email" validate:"required,loginemail"`
	Password  string `form:"password" validate:"required"`
	ReturnURL string `form:"return"`
}

var loginMessages = map[string]string{
	"Email.required":    MsgRequired,
	"Password.required": MsgRequired,
	"Email.loginemail":  MsgInvalidEmail,
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok && u.Level <= auth.DashboardLevel {
		http.Redirect(w, r, navigation.PathDashboard, http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "login_page", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Login", "/"),
		ReturnURL: query.Get(r, "return"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := formutil.Decode(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}
	if msg := formutil.Check(&in, loginMessages, MsgFailed); msg != "" {
		h.renderFormWithError(w, r, msg, in.Email, in.ReturnURL)
		return
	}
	in.Email = normalize.Email(in.Email)

	if h.Limiter != nil {
		if msg, ok := h.Limiter.Check(r, in.Email); !ok {
			h.Log.Warn("login rate limited", zap.String("ip", ratelimit.ClientIP(r)))
			h.Audit.LoginRateLimited(r.Context(), r, in.Email)
			w.WriteHeader(http.StatusTooManyRequests)
			h.renderFormWithError(w, r, msg, in.Email, in.ReturnURL)
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Call(), h.Log, "login")
	defer cancel()

	token, err := h.Accounts.Login(ctx, in.Email, in.Password)
	if err == nil && token == "" {
		err = errors.New("backend returned no token")
	}
	if err != nil {
		h.Log.Info("login rejected", zap.String("email", in.Email), zap.Error(err))
		h.Audit.LoginFailed(r.Context(), r, in.Email, gateway.Message(err))
		h.renderFormWithError(w, r, failureMessage(err), in.Email, in.ReturnURL)
		return
	}

	sess := auth.NewSession(uuid.NewString())
	sess.Login(token)
	level, err := sess.ResolveLevel(ctx, h.Accounts.For(sess).UserLevel)
	if err != nil || level > auth.DashboardLevel {
		h.Log.Info("login denied", zap.String("email", in.Email), zap.Int("level", level), zap.Error(err))
		h.Audit.LoginDenied(r.Context(), r, in.Email, level)
		h.recordDenied(r, sess.ID(), in.Email, level)
		sess.Logout()
		if derr := h.SessionMgr.Destroy(w, r); derr != nil {
			h.Log.Warn("clear session cookie", zap.Error(derr))
		}
		h.renderFormWithError(w, r, auth.NoLevelMessage, in.Email, in.ReturnURL)
		return
	}

	h.createSessionAndRedirect(w, r, sess, in)
}

// createSessionAndRedirect writes the session cookie, opens the ledger
// entry and sends the user on.
func (h *Handler) createSessionAndRedirect(w http.ResponseWriter, r *http.Request, sess *auth.Session, in loginInput) {
	if err := h.SessionMgr.Save(w, r, sess, in.Email); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("email", in.Email))
		h.renderFormWithError(w, r, msgSaveFailed, in.Email, in.ReturnURL)
		return
	}

	if h.Sessions != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ledger())
		defer cancel()
		if _, err := h.Sessions.Create(ctx, sess.ID(), in.Email, sess.Level(), ratelimit.ClientIP(r), r.UserAgent()); err != nil {
			h.Log.Warn("failed to create ledger session", zap.Error(err), zap.String("email", in.Email))
		}
	}

	h.Audit.LoginSuccess(r.Context(), r, sess.ID(), in.Email, sess.Level())
	if h.Limiter != nil {
		h.Limiter.Succeeded(in.Email)
	}

	dest := navigation.SafeBackURL(r, navigation.LoginReturn)
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// recordDenied leaves a closed ledger entry for a login below the
// dashboard level.
func (h *Handler) recordDenied(r *http.Request, id, email string, level int) {
	if h.Sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ledger())
	defer cancel()
	if _, err := h.Sessions.Create(ctx, id, email, level, ratelimit.ClientIP(r), r.UserAgent()); err != nil {
		h.Log.Warn("failed to record denied login", zap.Error(err), zap.String("email", email))
		return
	}
	if err := h.Sessions.Close(ctx, id, sessions.EndDenied); err != nil {
		h.Log.Warn("failed to close denied login", zap.Error(err), zap.String("email", email))
	}
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email, returnURL string) {
	templates.Render(w, r, "login_page", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Login", "/"),
		Error:     msg,
		Email:     email,
		ReturnURL: returnURL,
	})
}

// failureMessage shows the backend's own text for a rejected login and
// the generic message for transport trouble.
func failureMessage(err error) string {
	var re *gateway.RemoteOperationError
	if errors.As(err, &re) {
		return gateway.Message(err)
	}
	return MsgFailed
}
