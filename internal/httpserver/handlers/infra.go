package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Document   store.Stats                `json:"document"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"backend": checkBackend(r.Context(), d),
			"metrics": {OK: d.Metrics != nil},
			"static":  {OK: d.StaticDir != "", Mode: d.StaticDir},
		}

		writeJSON(w, d.Logger, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Document:   d.Store.Stats(),
			Components: components,
		})
	}
}

// determineMode is "degraded" when the backend is down: the API then answers 500 on every call.
func determineMode(components map[string]componentStatus) string {
	if b, ok := components["backend"]; ok && !b.OK {
		return "degraded"
	}
	return "operational"
}

func checkBackend(ctx context.Context, d deps.Deps) componentStatus {
	backend := d.Store.Backend()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := backend.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   backend.Name(),
			Impact: "reads-and-writes-failing",
			Error:  err.Error(),
		}
	}
	return componentStatus{
		OK:     true,
		Mode:   backend.Name(),
		Impact: "none",
	}
}
