package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-registry/internal/web/handlers"
)

func (s *Server) setupRoutes(maxEdge int) {
	usersHandler := handlers.NewUsersHandler(s.reg)
	enrollHandler := handlers.NewEnrollHandler(s.reg, maxEdge)
	identifyHandler := handlers.NewIdentifyHandler(s.reg, maxEdge)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Users
		r.Get("/users", usersHandler.List)
		r.Post("/users", enrollHandler.Enroll)
		r.Get("/users/{id}", usersHandler.Get)
		r.Patch("/users/{id}", usersHandler.Update)
		r.Delete("/users/{id}", usersHandler.Delete)
		r.Post("/users/{id}/images", enrollHandler.Augment)

		// Matching
		r.Post("/identify", identifyHandler.Identify)
		r.Post("/similar", identifyHandler.Similar)
	})
}
