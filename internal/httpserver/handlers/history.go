package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
)

type historyResponse struct {
	History []domain.Snapshot `json:"history"`
}

// GetHistory returns the persisted history, newest first.
func GetHistory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := d.Store.History(r.Context())
		if err != nil {
			writeError(w, d.Logger, http.StatusInternalServerError, "failed to read history")
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, historyResponse{History: history})
	}
}

// PostHistory appends a client snapshot. Missing fields get defaults.
func PostHistory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if status, err := decodeBody(r, &raw); err != nil {
			d.Logger.Debug("rejected snapshot body", logger.Error(err))
			writeError(w, d.Logger, status, http.StatusText(status))
			return
		}
		in, err := store.DecodeSnapshotInput(raw)
		if err != nil {
			d.Logger.Debug("rejected snapshot body", logger.Error(err))
			writeError(w, d.Logger, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
			return
		}

		snap, err := d.Store.AppendSnapshot(r.Context(), in)
		if err != nil {
			writeError(w, d.Logger, http.StatusInternalServerError, "failed to save snapshot")
			return
		}

		d.Logger.Debug("snapshot appended",
			logger.String("snapshot_id", snap.ID),
			logger.String("action", string(snap.Action)))
		writeJSON(w, d.Logger, http.StatusOK, okResponse{OK: true})
	}
}
