package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/minhhq2805/prefdash/internal/syncer"
	"github.com/minhhq2805/prefdash/internal/wallet"
)

// writeJSON encodes v as JSON and writes it to the response with the given
// HTTP status code. Content-Type is always set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// At this point headers are already sent; log but cannot change status.
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response with the given HTTP status code.
// The response body is {"error": "message"}; the UI shows it as a
// transient banner.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeActionError maps synchronizer failures onto HTTP statuses.
func writeActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wallet.ErrNotConnected):
		writeError(w, http.StatusUnauthorized, "Connect a wallet first")
	case errors.Is(err, syncer.ErrMissingCategory):
		writeError(w, http.StatusBadRequest, "Category is required")
	case errors.Is(err, syncer.ErrNotOwner):
		writeError(w, http.StatusForbidden, "Only the record owner can change its status")
	case errors.Is(err, syncer.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "Record not found")
	case errors.Is(err, syncer.ErrStale):
		writeError(w, http.StatusConflict, "Record was changed by another writer; reload and retry")
	case errors.Is(err, syncer.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Data store is unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "Operation failed")
	}
}
