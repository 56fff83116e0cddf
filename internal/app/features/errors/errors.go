// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/leadhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Message  string
	RetryURL string
}

// Handler renders the standalone error pages. It has no dependencies.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders the access denied page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "이 페이지에 접근할 권한이 없습니다.", "")
}

// Unauthorized renders the sign-in required page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusUnauthorized)
	templates.Render(w, r, "error_page", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "로그인이 필요합니다", "/login"),
		Message: "계속하려면 로그인하세요.",
	})
}

// RenderForbidden shows the access denied page with msg.
// An empty backURL resolves a safe back URL defaulting to /dashboard.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if backURL == "" {
		backURL = "/dashboard"
	}
	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_page", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "접근 거부", backURL),
		Message: msg,
	})
}
