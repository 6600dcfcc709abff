// internal/app/features/submissions/routes.go
package submissions

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/applyhub/internal/app/system/auth"
)

// Routes returns the admin review subrouter (mounted under
// /api/submissions). Every route requires an admin session.
//
// The bulk routes are registered before the {id} routes so that
// "bulk-update" and "bulk-delete" are never captured as IDs.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireAdmin)

	r.Get("/", h.List)
	r.Get("/export", h.ExportCSV)
	r.Put("/bulk-update", h.BulkUpdate)
	r.Delete("/bulk-delete", h.BulkDelete)
	r.Put("/{id}", h.SetStatus)
	r.Delete("/{id}", h.DeleteOne)

	return r
}
