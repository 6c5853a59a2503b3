package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/mw"
)

func init() { Register(registerOps) }

// registerOps mounts the operator endpoints behind the CIDR allow-list.
func registerOps(r chi.Router, d deps.Deps) {
	r.Group(func(ops chi.Router) {
		ops.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))

		ops.Get("/readyz", handlers.Readyz(d))
		ops.Get("/infra", handlers.Infra(d))
		if d.Metrics != nil {
			ops.Handle("/metrics", d.Metrics.Handler())
		}
	})
}
