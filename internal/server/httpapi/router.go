package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter wires all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1/auth", func(r chi.Router) {
		// no token required
		r.Post("/users", s.handleRegister)
		r.Post("/token", s.handleLogin)

		// access-token protected
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/users/me", s.handleMe)
			r.Patch("/users", s.handlePatchUser)
			r.Delete("/users/{id}", s.handleDeleteUser)

			r.Put("/token", s.handleRefresh)
			r.Delete("/token", s.handleLogout)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
