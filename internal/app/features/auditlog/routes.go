// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// ViewLevel is the lowest rank that may read the audit trail.
const ViewLevel = 1

// Routes mounts the audit trail under the path where this router is
// mounted. Only head office may read it.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireLevel(ViewLevel))

		pr.Get("/", h.ServeList)
	})

	return r
}
