// internal/app/features/adminauth/routes.go
package adminauth

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/applyhub/internal/app/system/auth"
)

// Routes returns a subrouter for the admin auth and audit endpoints,
// mounted under /api/admin.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/status", h.Status)

	r.Group(func(gr chi.Router) {
		gr.Use(sm.RequireAdmin)
		gr.Get("/audit", h.RecentActivity)
		gr.Get("/audit/failed-logins", h.FailedLogins)
	})
	return r
}
