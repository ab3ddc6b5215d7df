package main

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/madebycotrim/printlog-sub001/internal/config"
)

func (s *server) routes(cfg config.Config) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Route("/api", func(api chi.Router) {
		api.Post("/quote", s.handleComputeQuote)
		api.Get("/convert", s.handleConvert)

		api.Get("/settings", s.handleSettingsGet)
		api.Put("/settings", s.handleSettingsUpdate)

		api.Route("/quotes", func(quotes chi.Router) {
			quotes.Get("/", s.handleQuotesList)
			quotes.Post("/", s.handleQuoteCreate)
			quotes.Get("/{id}", s.handleQuoteGet)
			quotes.Post("/{id}/recalculate", s.handleQuoteRecalculate)
			quotes.Patch("/{id}/status", s.handleQuoteStatus)
		})
	})

	return router
}
