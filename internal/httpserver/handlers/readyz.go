package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
)

type readyzResponse struct {
	Ready   bool   `json:"ready"`
	Backend string `json:"backend"`
	Error   string `json:"error,omitempty"`
}

// Readyz reports whether the document backend answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		backend := d.Store.Backend()

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := backend.Ping(ctx); err != nil {
			d.Logger.Warn("readiness check failed",
				logger.String("backend", backend.Name()),
				logger.Error(err))
			writeJSON(w, d.Logger, http.StatusServiceUnavailable, readyzResponse{
				Ready:   false,
				Backend: backend.Name(),
				Error:   "backend unreachable",
			})
			return
		}

		writeJSON(w, d.Logger, http.StatusOK, readyzResponse{Ready: true, Backend: backend.Name()})
	}
}
