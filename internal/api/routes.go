package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://everfaz.com", "https://www.everfaz.com", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.HandleHealth)

	// Webhooks arrive from SNS, not a browser.
	r.Post("/webhooks/sns", h.HandleSNS)

	// One-click unsubscribe links land here from email clients.
	r.Get("/unsubscribe", h.HandleUnsubscribeLink)

	r.Route("/api", func(r chi.Router) {
		r.Post("/contact", h.HandleContact)
		r.Post("/unsubscribe", h.HandleUnsubscribe)

		r.Get("/reputation", h.HandleReputationStats)
		r.Get("/metrics/daily", h.HandleDailyMetrics)

		r.Route("/suppressions", func(r chi.Router) {
			r.Get("/", h.HandleListSuppressions)
			r.Post("/check", h.HandleCheckSuppression)
		})
	})

	return r
}
