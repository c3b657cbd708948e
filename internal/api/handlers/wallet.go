package handlers

import (
	"net/http"

	"github.com/minhhq2805/prefdash/internal/keyvalue"
	"github.com/minhhq2805/prefdash/internal/wallet"
)

type walletResponse struct {
	Connected bool   `json:"connected"`
	Address   string `json:"address,omitempty"`
}

// GetWallet handles GET /api/wallet. It reports the active account.
func GetWallet(w *wallet.Provider) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		writeJSON(rw, http.StatusOK, walletResponse{
			Connected: w.Connected(),
			Address:   w.Address(),
		})
	}
}

type healthResponse struct {
	StoreAvailable bool `json:"store_available"`
}

// Health handles GET /api/health. It probes the store and returns 503
// when the store is unreachable, so the UI can show its banner.
func Health(store keyvalue.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		available := store.IsAvailable(r.Context())
		status := http.StatusOK
		if !available {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, healthResponse{StoreAvailable: available})
	}
}
