package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestTimeout bounds every dashboard route except company selection, which
// runs under the server's refresh budget.
const RequestTimeout = 60 * time.Second

// RegisterRoutes registers all company dashboard routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	timeout := middleware.Timeout(RequestTimeout)

	r.Route("/companies", func(r chi.Router) {
		r.With(timeout).Get("/", h.HandleListCompanies)

		r.Route("/{id}", func(r chi.Router) {
			r.Post("/select", h.HandleSelectCompany)

			r.Group(func(r chi.Router) {
				r.Use(timeout)
				r.Get("/price", h.HandleGetPrice)
				r.Get("/revenue", h.HandleGetRevenue)
				r.Get("/statements", h.HandleGetStatements)
				r.Get("/shareholding", h.HandleGetShareholding)
				r.Get("/valuation", h.HandleGetValuation)
				r.Get("/news", h.HandleGetNews)
				r.Get("/news/analysis", h.HandleGetNewsAnalysis)
				r.Get("/overview", h.HandleGetOverview)
			})
		})
	})
}
