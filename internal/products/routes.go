package products

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers the product endpoints onto the router. The schedule
// endpoint fans one upstream request out per course, so it carries a tighter
// rate limit than the rest of the API.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/products", h.handleList)
	r.Get("/products/{id}", h.handleView)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/products/{id}/schedule", h.handleSchedule)
	})
}
