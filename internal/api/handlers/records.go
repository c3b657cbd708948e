package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minhhq2805/prefdash/internal/models"
	"github.com/minhhq2805/prefdash/internal/syncer"
	"github.com/minhhq2805/prefdash/internal/view"
)

// recordJSON is the wire form of a record; the ID joins the blob fields.
type recordJSON struct {
	ID        string        `json:"id"`
	Category  string        `json:"category"`
	Status    models.Status `json:"status"`
	Timestamp int64         `json:"timestamp"`
	Owner     string        `json:"owner"`
	Data      string        `json:"data"`
	Version   int64         `json:"version"`
}

func toRecordJSON(rec models.Record) recordJSON {
	return recordJSON{
		ID:        rec.ID,
		Category:  rec.Category,
		Status:    rec.Status,
		Timestamp: rec.Timestamp,
		Owner:     rec.Owner,
		Data:      rec.Data,
		Version:   rec.Version,
	}
}

type listResponse struct {
	Records    []recordJSON `json:"records"`
	Counts     view.Counts  `json:"counts"`
	Categories []string     `json:"categories"`
	Skipped    int          `json:"skipped"`
	Dangling   []string     `json:"dangling"`
}

// ListRecords handles GET /api/records. Query parameters search, category,
// and status filter the returned records; counts and the category options
// always cover the full loaded list.
func ListRecords(sync *syncer.Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := sync.Load(r.Context())
		if err != nil {
			slog.Error("failed to load records", "error", err)
			writeActionError(w, err)
			return
		}

		q := r.URL.Query()
		filter := view.Filter{
			Search:   q.Get("search"),
			Category: q.Get("category"),
			Status:   q.Get("status"),
		}

		filtered := filter.Apply(snap.Records)
		resp := listResponse{
			Records:    make([]recordJSON, 0, len(filtered)),
			Counts:     view.Count(snap.Records),
			Categories: view.Categories(snap.Records),
			Skipped:    snap.Skipped,
			Dangling:   snap.Dangling,
		}
		for _, rec := range filtered {
			resp.Records = append(resp.Records, toRecordJSON(rec))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

type submitRequest struct {
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Settings    json.RawMessage `json:"settings"`
}

type receiptResponse struct {
	Record    recordJSON `json:"record"`
	Signature string     `json:"signature"`
}

// SubmitRecord handles POST /api/records. It creates a pending record
// owned by the connected account.
func SubmitRecord(sync *syncer.Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body submitRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		receipt, err := sync.Submit(r.Context(), syncer.SubmitInput{
			Category:    body.Category,
			Description: body.Description,
			Settings:    body.Settings,
		})
		if err != nil {
			slog.Error("failed to submit record", "error", err)
			writeActionError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, receiptResponse{
			Record:    toRecordJSON(receipt.Record),
			Signature: receipt.Signature,
		})
	}
}

type payloadResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Settings    json.RawMessage `json:"settings,omitempty"`
}

// OpenRecordPayload handles GET /api/records/{id}/payload. It decodes the
// record's opaque payload for display.
func OpenRecordPayload(sync *syncer.Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		rec, err := sync.Get(r.Context(), id)
		if err != nil {
			writeActionError(w, err)
			return
		}

		payload, err := syncer.Open(rec.Data)
		if err != nil {
			slog.Warn("record payload not decodable", "id", id, "error", err)
			writeError(w, http.StatusUnprocessableEntity, "Record payload is not decodable")
			return
		}

		writeJSON(w, http.StatusOK, payloadResponse{
			ID:          id,
			Description: payload.Description,
			Settings:    payload.Settings,
		})
	}
}
