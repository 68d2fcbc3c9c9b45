package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(prices *PriceHandler, scrape *ScrapeHandler, health *HealthHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(AccessLog(logger))
	r.Use(Recover(logger))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "ruta no encontrada")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "método no permitido")
	})

	r.Get("/health", health.Check)

	r.Route("/precios", func(r chi.Router) {
		r.Post("/buscar", prices.Search)
		r.Get("/comparar", prices.Compare)
		r.Get("/optimizar", prices.OptimizeQuery)
		r.Post("/optimizar", prices.OptimizeBody)
		r.Get("/scrape", scrape.Status)
		r.Post("/scrape", scrape.Scrape)
	})

	return r
}
