package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"user-service/internal/handler"
)

func SetupRoutes(r chi.Router, h *handler.UserHandler) chi.Router {
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/users/health", h.Health)
		api.Post("/users/register", h.Register)
	})

	return r
}
