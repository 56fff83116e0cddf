package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/leadhub/internal/app/system/gateway"
	"github.com/dalemusser/leadhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures and renders the matching error page.
type ErrorLogger struct {
	Log     *zap.Logger
	expired func(w http.ResponseWriter, r *http.Request)
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// OnSessionExpired installs the teardown run before redirecting a user
// whose backend token has expired (cookie, ledger and list state).
func (e *ErrorLogger) OnSessionExpired(fn func(w http.ResponseWriter, r *http.Request)) {
	e.expired = fn
}

// LogServerError logs err and renders a 500 page with userMsg and a link
// back to backURL.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Error(msg, zap.Error(err), zap.String("path", r.URL.Path), zap.Int("status", http.StatusInternalServerError))
	e.render(w, r, http.StatusInternalServerError, userMsg, backURL, "")
}

// LogBadRequest logs err at warn level and renders a 400 page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.Log.Warn(msg, zap.Error(err), zap.String("path", r.URL.Path), zap.Int("status", http.StatusBadRequest))
	e.render(w, r, http.StatusBadRequest, userMsg, backURL, "")
}

// LogRemoteError handles a failed backend call. An expired session is
// torn down and redirected to /login; anything else renders a 502 page
// with the backend's message and a retry link to retryURL.
func (e *ErrorLogger) LogRemoteError(w http.ResponseWriter, r *http.Request, msg string, err error, retryURL string) {
	if e.HandleExpired(w, r, err) {
		return
	}
	e.Log.Warn(msg, zap.Error(err), zap.String("path", r.URL.Path), zap.Int("status", http.StatusBadGateway))
	e.render(w, r, http.StatusBadGateway, gateway.Message(err), retryURL, retryURL)
}

// HandleExpired reports whether err is a session expiry and, if so, tears
// the session down and sends the user to /login.
func (e *ErrorLogger) HandleExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !stderrors.Is(err, gateway.ErrSessionExpired) {
		return false
	}
	e.Log.Info("backend session expired", zap.String("path", r.URL.Path))
	if e.expired != nil {
		e.expired(w, r)
	}
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusUnauthorized)
		return true
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}

func (e *ErrorLogger) render(w http.ResponseWriter, r *http.Request, status int, userMsg, backURL, retryURL string) {
	w.WriteHeader(status)
	data := pageData{
		BaseVM:   viewdata.NewBaseVM(r, "오류", backURL),
		Message:  userMsg,
		RetryURL: retryURL,
	}
	if r.Header.Get("HX-Request") != "" {
		templates.RenderSnippet(w, "error_banner", data)
		return
	}
	templates.Render(w, r, "error_page", data)
}
