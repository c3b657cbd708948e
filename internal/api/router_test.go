package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/minhhq2805/prefdash/internal/keyvalue"
	"github.com/minhhq2805/prefdash/internal/syncer"
	"github.com/minhhq2805/prefdash/internal/wallet"
)

// TestRouter_SubmitToggleListFlow drives a whole user session through the
// routed API: submit a record, activate it, deactivate it, and list.
func TestRouter_SubmitToggleListFlow(t *testing.T) {
	store := keyvalue.NewMemory()
	w, err := wallet.Generate()
	if err != nil {
		t.Fatalf("generating wallet: %v", err)
	}
	sync := syncer.New(store, w, syncer.Options{})
	router := NewRouter(sync, w, store)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		t.Helper()
		var r *http.Request
		if body == "" {
			r = httptest.NewRequest(method, path, nil)
		} else {
			r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, r)
		return rec
	}

	// Submit.
	rec := do(http.MethodPost, "/api/records", `{"category":"theme","description":"dark"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: got status %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Record struct {
			ID      string `json:"id"`
			Version int64  `json:"version"`
		} `json:"record"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decoding submit response: %v", err)
	}

	// Activate with the observed version.
	rec = do(http.MethodPost, "/api/records/"+created.Record.ID+"/activate",
		fmt.Sprintf(`{"version":%d}`, created.Record.Version))
	if rec.Code != http.StatusOK {
		t.Fatalf("activate: got status %d, body %s", rec.Code, rec.Body.String())
	}

	// Deactivate without a version (check skipped).
	rec = do(http.MethodPost, "/api/records/"+created.Record.ID+"/deactivate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate: got status %d, body %s", rec.Code, rec.Body.String())
	}

	// List: exactly one inactive record, never pending after a toggle pair.
	rec = do(http.MethodGet, "/api/records?status=inactive", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got status %d", rec.Code)
	}
	var listed struct {
		Records []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"records"`
		Counts struct {
			Pending  int `json:"pending"`
			Inactive int `json:"inactive"`
		} `json:"counts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	if len(listed.Records) != 1 || listed.Records[0].ID != created.Record.ID {
		t.Fatalf("got records %+v, want the submitted record", listed.Records)
	}
	if listed.Records[0].Status != "inactive" {
		t.Errorf("got status %q, want inactive", listed.Records[0].Status)
	}
	if listed.Counts.Pending != 0 || listed.Counts.Inactive != 1 {
		t.Errorf("got counts %+v, want pending=0 inactive=1", listed.Counts)
	}

	// Health and wallet endpoints respond through the same router.
	if rec = do(http.MethodGet, "/api/health", ""); rec.Code != http.StatusOK {
		t.Errorf("health: got status %d, want 200", rec.Code)
	}
	if rec = do(http.MethodGet, "/api/wallet", ""); rec.Code != http.StatusOK {
		t.Errorf("wallet: got status %d, want 200", rec.Code)
	}
}
