package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	r.Route("/api", func(api chi.Router) {
		api.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))

		api.Get("/data", handlers.GetData(d))
		api.Get("/history", handlers.GetHistory(d))

		api.Group(func(w chi.Router) {
			// off unless configured: a client sends two writes per change and never retries
			if d.RatePerMin > 0 {
				w.Use(mw.RateLimit(mw.RateLimitConfig{
					Burst:             d.RateBurst,
					RefillPerIPPerMin: d.RatePerMin,
					MaxEntries:        10_000,
					TrustProxy:        d.TrustProxy,
				}))
			}
			w.Use(mw.BodyLimit(d.BodyLimit))

			w.Post("/data", handlers.PostData(d))
			w.Post("/history", handlers.PostHistory(d))
		})
	})
}
