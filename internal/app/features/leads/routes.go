// internal/app/features/leads/routes.go
package leads

import (
	"context"
	"net/http"

	leadstore "github.com/dalemusser/leadhub/internal/app/store/leads"
	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

type scopeKey struct{}

func scopeFrom(r *http.Request) leadstore.Scope {
	s, _ := r.Context().Value(scopeKey{}).(leadstore.Scope)
	return s
}

func withScope(scope leadstore.Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), scopeKey{}, scope)))
		})
	}
}

// typeScope resolves the {type} path parameter. Unknown categories are 404.
func typeScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, err := leadstore.TypeScope(chi.URLParam(r, "type"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), scopeKey{}, scope)))
	})
}

// Routes mounts one fixed lead screen for levels up to maxLevel.
func Routes(h *Handler, sm *auth.SessionManager, scope leadstore.Scope, maxLevel int) chi.Router {
	return h.routes(sm, maxLevel, withScope(scope))
}

// TypeRoutes mounts the per-category screens. Mount it at a pattern
// carrying a {type} parameter.
func TypeRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	return h.routes(sm, auth.DashboardLevel, typeScope)
}

func (h *Handler) routes(sm *auth.SessionManager, maxLevel int, scoped func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireLevel(maxLevel))
		pr.Use(scoped)

		pr.Get("/", h.ServeList)
		pr.Post("/search", h.HandleSearch)
		pr.Post("/clear", h.HandleClear)
		pr.Post("/select", h.HandleSelect)
		pr.Post("/new", h.HandleCreate)
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}/edit", h.HandleEdit)
		pr.Get("/{id}/memo", h.ServeMemo)
		pr.Post("/{id}/memo", h.HandleMemo)
		pr.Get("/{id}/sms", h.ServeSMS)
		pr.Post("/bulk/delete", h.HandleBulkDelete)
		pr.Post("/bulk/manager", h.HandleBulkManager)
		pr.Post("/bulk/type", h.HandleBulkType)
		pr.Post("/import", h.HandleImport)
		pr.Post("/import/{job}/confirm", h.HandleImportConfirm)
		pr.Post("/import/{job}/cancel", h.HandleImportCancel)
	})

	return r
}
