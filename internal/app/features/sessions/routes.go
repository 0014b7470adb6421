// internal/app/features/sessions/routes.go
package sessions

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the session API; it is mounted under
// /sessions.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)

	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/open", h.Open)
		r.Post("/cancel", h.Cancel)
		r.Post("/enroll", h.Enroll)
		r.Post("/match", h.TriggerMatch)
		r.Get("/match", h.GetMatch)
		r.Post("/rematch", h.Rematch)
	})

	return r
}
