package models

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of a preference record. Transitions are
// unordered: any record may be activated or deactivated at any time, and
// no state is terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive:
		return true
	}
	return false
}

// Record is one preference entry. The ID comes from the key index; the
// remaining fields are the JSON blob stored under the record's key.
// Version counts status writes and backs the stale-write check; blobs
// written before versioning decode as version 0.
type Record struct {
	ID        string `json:"-"`
	Data      string `json:"data"`
	Timestamp int64  `json:"timestamp"`
	Owner     string `json:"owner"`
	Category  string `json:"category"`
	Status    Status `json:"status"`
	Version   int64  `json:"version,omitempty"`
}

// DecodeRecord parses a stored record blob. A missing or unrecognized
// status defaults to pending.
func DecodeRecord(id string, raw []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("parsing record %q: %w", id, err)
	}
	rec.ID = id
	if !rec.Status.Valid() {
		rec.Status = StatusPending
	}
	return rec, nil
}

// EncodeRecord serializes a record to the stored blob form. The ID is not
// part of the blob; it lives in the key and the key index.
func EncodeRecord(rec Record) ([]byte, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding record %q: %w", rec.ID, err)
	}
	return raw, nil
}
