// internal/app/features/accounts/routes.go
package accounts

import (
	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the accounts screen. Every dashboard level may open it;
// editing is limited to EditLevel and above.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireLevel(auth.DashboardLevel))

		pr.Get("/", h.ServeList)
		pr.Post("/search", h.HandleSearch)
		pr.Post("/clear", h.HandleClear)
		pr.Post("/select", h.HandleSelect)
		pr.Post("/new", h.HandleCreate)
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}/edit", h.HandleEdit)
		pr.Post("/bulk/delete", h.HandleBulkDelete)
	})

	return r
}
