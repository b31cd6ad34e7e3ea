package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler returns the full router with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestIDHeader)
	r.Use(loggingMiddleware(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(corsMiddleware(s.cfg.Server.AllowedOrigins))

	s.registerRoutes(r)
	return r
}

func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/health", s.handleHealth)

	r.Route("/api/interviews", func(r chi.Router) {
		r.Post("/", s.handleCreateInterview)
		r.Get("/{sessionID}", s.handleGetInterview)
	})
	r.Get("/api/interviewers", s.handleListInterviewers)
	r.Get("/api/interview/all_interviewers", s.handleListInterviewers)

	r.Get("/ws/interview/{sessionID}", s.handleInterviewSocket)

	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleMethodNotAllowed)
}
