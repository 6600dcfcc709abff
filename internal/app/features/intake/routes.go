// internal/app/features/intake/routes.go
package intake

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter for the public submission endpoint. limit is
// the per-IP daily submission limiter (with admin bypass); it is injected
// so tests can mount the routes without one.
func Routes(h *Handler, limit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	if limit != nil {
		r.Use(limit)
	}
	r.Post("/", h.Submit) // mounted under /api/submit
	return r
}
