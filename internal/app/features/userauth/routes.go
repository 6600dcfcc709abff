// internal/app/features/userauth/routes.go
package userauth

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/applyhub/internal/app/system/auth"
)

// Routes returns a subrouter for the member auth endpoints, mounted under
// /api/user. Password changes require a member session.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Group(func(gr chi.Router) {
		gr.Use(sm.RequireUser)
		gr.Post("/change-password", h.ChangePassword)
	})
	return r
}
