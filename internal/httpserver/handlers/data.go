package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
)

type dataResponse struct {
	Items domain.Collection `json:"items"`
}

type dataRequest struct {
	Items json.RawMessage `json:"items"`
}

// GetData returns the persisted collection, re-read from the backend.
func GetData(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := d.Store.Items(r.Context())
		if err != nil {
			writeError(w, d.Logger, http.StatusInternalServerError, "failed to read collection")
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, dataResponse{Items: items})
	}
}

// PostData replaces the collection. The store records an upsert snapshot.
func PostData(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dataRequest
		if status, err := decodeBody(r, &req); err != nil {
			d.Logger.Debug("rejected collection body", logger.Error(err))
			writeError(w, d.Logger, status, http.StatusText(status))
			return
		}

		items, err := store.DecodeItems(req.Items)
		if err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, err.Error())
			return
		}

		snap, err := d.Store.ReplaceItems(r.Context(), items)
		if err != nil {
			writeError(w, d.Logger, http.StatusInternalServerError, "failed to save collection")
			return
		}

		d.Logger.Info("collection replaced",
			logger.Int("items", len(items)),
			logger.String("snapshot_id", snap.ID))
		writeJSON(w, d.Logger, http.StatusOK, okResponse{OK: true})
	}
}
