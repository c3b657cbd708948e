package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minhhq2805/prefdash/internal/models"
	"github.com/minhhq2805/prefdash/internal/syncer"
)

type statusRequest struct {
	// Version is the record version the client observed. Zero skips the
	// stale-write check.
	Version int64 `json:"version"`
}

// SetRecordStatus handles POST /api/records/{id}/activate and
// /api/records/{id}/deactivate. The request body may carry the observed
// record version; an empty body is accepted.
func SetRecordStatus(sync *syncer.Syncer, status models.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var body statusRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		receipt, err := sync.SetStatus(r.Context(), id, status, body.Version)
		if err != nil {
			slog.Error("failed to change record status",
				"id", id, "status", status, "error", err)
			writeActionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, receiptResponse{
			Record:    toRecordJSON(receipt.Record),
			Signature: receipt.Signature,
		})
	}
}
