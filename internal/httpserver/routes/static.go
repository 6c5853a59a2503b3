package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
)

func init() { Register(registerStatic) }

// registerStatic serves StaticDir at / so a web client can live next to the API.
func registerStatic(r chi.Router, d deps.Deps) {
	if d.StaticDir == "" {
		return
	}
	d.Logger.Infof("serving static files from %s", d.StaticDir)
	r.Handle("/*", http.FileServer(http.Dir(d.StaticDir)))
}
