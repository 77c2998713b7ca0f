package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(g.metrics.instrument)

	// Public, no auth required.
	r.Get("/health", g.handleHealth())
	r.Method(http.MethodGet, "/metrics", g.metrics.Handler())

	// Webhooks use per-source HMAC or handler-level auth.
	r.Post("/webhooks/{source}", g.dispatcher.ServeHTTP)

	// Live analysis event stream.
	r.Get("/ws/events", g.hub.ServeHTTP)

	// Admin endpoints require auth. Not mounted if no auth configured.
	if g.config.Auth.IsConfigured() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth))
			r.Get("/status", g.handleStatus())
			r.Route("/api", func(r chi.Router) {
				r.Get("/analyses", g.handleListAnalyses())
				r.Get("/reports/{symbol}", g.handleGetReport())
				r.Get("/metrics", g.handleChannelMetrics())
			})
		})
	}

	return r
}
