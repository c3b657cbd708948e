// Package syncer keeps the dashboard's view of preference records in sync
// with the key-value store: it loads the key index and record blobs into
// an ordered snapshot and issues the read-modify-write updates behind
// submit, activate, and deactivate.
package syncer

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/minhhq2805/prefdash/internal/keyvalue"
	"github.com/minhhq2805/prefdash/internal/models"
	"github.com/minhhq2805/prefdash/internal/wallet"
)

// IndexKey is the well-known key holding the JSON array of record IDs.
const IndexKey = "preference_keys"

// recordKeyPrefix derives per-record keys: "preference_{id}".
const recordKeyPrefix = "preference_"

func recordKey(id string) string {
	return recordKeyPrefix + id
}

var (
	// ErrStoreUnavailable is returned when the store does not answer its
	// availability probe.
	ErrStoreUnavailable = errors.New("data store unavailable")

	// ErrRecordNotFound is returned by status changes on an unknown record.
	ErrRecordNotFound = errors.New("record not found")

	// ErrNotOwner is returned when the acting account does not own the
	// record. The check runs before any write.
	ErrNotOwner = errors.New("account does not own this record")

	// ErrStale is returned when the caller's observed version no longer
	// matches the stored record, i.e. another writer got there first.
	ErrStale = errors.New("record was modified by another writer")

	// ErrMissingCategory is returned by Submit when no category was given.
	ErrMissingCategory = errors.New("category is required")
)

// Options tunes a Syncer.
type Options struct {
	// ComputeDelay is the fixed artificial latency inserted before each
	// status write, simulating the original's placeholder computation.
	ComputeDelay time.Duration
}

// Syncer coordinates all record reads and writes against one store on
// behalf of one wallet account.
type Syncer struct {
	store  keyvalue.Store
	wallet *wallet.Provider
	delay  time.Duration
	loads  singleflight.Group
}

// New creates a Syncer over the given store and wallet.
func New(store keyvalue.Store, w *wallet.Provider, opts Options) *Syncer {
	return &Syncer{
		store:  store,
		wallet: w,
		delay:  opts.ComputeDelay,
	}
}

// Snapshot is the result of one full load: the parseable records in
// timestamp-descending order, plus a reconciliation report of what the
// load had to skip.
type Snapshot struct {
	Records []models.Record

	// Skipped counts record blobs that existed but failed to parse.
	Skipped int

	// Dangling lists index entries with no stored blob (a submit that
	// failed between its two writes, or an orphaned index entry).
	Dangling []string
}

// Load fetches the key index and every referenced record blob, one
// sequential round trip per key. A missing or unparsable index yields an
// empty snapshot; an individual absent or corrupt record is skipped and
// reported so it never blocks the rest of the list. Concurrent loads are
// coalesced into a single fetch.
func (s *Syncer) Load(ctx context.Context) (Snapshot, error) {
	v, err, _ := s.loads.Do("load", func() (any, error) {
		return s.load(ctx)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

func (s *Syncer) load(ctx context.Context) (Snapshot, error) {
	if !s.store.IsAvailable(ctx) {
		return Snapshot{}, ErrStoreUnavailable
	}

	ids, err := s.readIndex(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{Records: make([]models.Record, 0, len(ids))}
	for _, id := range ids {
		raw, err := s.store.GetData(ctx, recordKey(id))
		if err != nil {
			if errors.Is(err, keyvalue.ErrNotFound) {
				slog.Warn("dangling index entry", "id", id)
				snap.Dangling = append(snap.Dangling, id)
				continue
			}
			return Snapshot{}, fmt.Errorf("fetching record %q: %w", id, err)
		}

		rec, err := models.DecodeRecord(id, raw)
		if err != nil {
			slog.Warn("skipping unparsable record", "id", id, "error", err)
			snap.Skipped++
			continue
		}
		snap.Records = append(snap.Records, rec)
	}

	// Newest first; ties keep index order.
	sort.SliceStable(snap.Records, func(i, j int) bool {
		return snap.Records[i].Timestamp > snap.Records[j].Timestamp
	})
	return snap, nil
}

// readIndex fetches and parses the key index. Absent or unparsable
// indices are logged and treated as empty, not fatal.
func (s *Syncer) readIndex(ctx context.Context) ([]string, error) {
	raw, err := s.store.GetData(ctx, IndexKey)
	if err != nil {
		if errors.Is(err, keyvalue.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching key index: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		slog.Warn("key index unparsable, treating as empty", "error", err)
		return nil, nil
	}
	return ids, nil
}

// Get fetches and decodes a single record.
func (s *Syncer) Get(ctx context.Context, id string) (models.Record, error) {
	raw, err := s.store.GetData(ctx, recordKey(id))
	if err != nil {
		if errors.Is(err, keyvalue.ErrNotFound) {
			return models.Record{}, ErrRecordNotFound
		}
		return models.Record{}, fmt.Errorf("fetching record %q: %w", id, err)
	}
	return models.DecodeRecord(id, raw)
}

// SubmitInput is the user-entered form for a new record.
type SubmitInput struct {
	Category    string
	Description string
	Settings    json.RawMessage
}

// Receipt reports a completed write: the record as stored plus the hex
// signature of the blob produced by the connected wallet.
type Receipt struct {
	Record    models.Record
	Signature string
}

// Submit creates a record owned by the connected account, then appends
// its ID to the key index. The two writes are not atomic: a failure after
// the record write leaves the record orphaned until a later submit or a
// load-time reconciliation notices it. There is no rollback.
func (s *Syncer) Submit(ctx context.Context, in SubmitInput) (Receipt, error) {
	if !s.wallet.Connected() {
		return Receipt{}, wallet.ErrNotConnected
	}
	if strings.TrimSpace(in.Category) == "" {
		return Receipt{}, ErrMissingCategory
	}
	if !s.store.IsAvailable(ctx) {
		return Receipt{}, ErrStoreUnavailable
	}

	data, err := Seal(Payload{Description: in.Description, Settings: in.Settings})
	if err != nil {
		return Receipt{}, err
	}

	now := time.Now()
	rec := models.Record{
		ID:        newRecordID(now),
		Data:      data,
		Timestamp: now.Unix(),
		Owner:     s.wallet.Address(),
		Category:  strings.TrimSpace(in.Category),
		Status:    models.StatusPending,
		Version:   1,
	}

	sig, err := s.writeRecord(ctx, rec)
	if err != nil {
		return Receipt{}, err
	}

	if err := s.appendToIndex(ctx, rec.ID); err != nil {
		// The record blob is already stored but unreachable from the
		// index. Surface the failure; the next load reports the orphan.
		return Receipt{}, err
	}

	slog.Info("record submitted", "id", rec.ID, "category", rec.Category, "owner", rec.Owner)
	return Receipt{Record: rec, Signature: sig}, nil
}

// SetStatus transitions a record to active or inactive on behalf of the
// connected account. It is a full read-modify-write of the blob: the
// owner check and the version check both run before the write.
// expectVersion is the version the caller observed; pass 0 to skip the
// stale-write check.
func (s *Syncer) SetStatus(ctx context.Context, id string, status models.Status, expectVersion int64) (Receipt, error) {
	if status != models.StatusActive && status != models.StatusInactive {
		return Receipt{}, fmt.Errorf("cannot transition record to %q", status)
	}
	if !s.wallet.Connected() {
		return Receipt{}, wallet.ErrNotConnected
	}
	if !s.store.IsAvailable(ctx) {
		return Receipt{}, ErrStoreUnavailable
	}

	rec, err := s.Get(ctx, id)
	if err != nil {
		return Receipt{}, err
	}

	if !strings.EqualFold(rec.Owner, s.wallet.Address()) {
		return Receipt{}, ErrNotOwner
	}
	if expectVersion > 0 && rec.Version != expectVersion {
		return Receipt{}, ErrStale
	}

	// Simulated computation latency before the write.
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return Receipt{}, ctx.Err()
		}
	}

	rec.Status = status
	rec.Version++

	sig, err := s.writeRecord(ctx, rec)
	if err != nil {
		return Receipt{}, err
	}

	slog.Info("record status changed", "id", id, "status", status, "version", rec.Version)
	return Receipt{Record: rec, Signature: sig}, nil
}

// writeRecord signs and stores a record blob, returning the hex signature.
func (s *Syncer) writeRecord(ctx context.Context, rec models.Record) (string, error) {
	raw, err := models.EncodeRecord(rec)
	if err != nil {
		return "", err
	}

	sig, err := s.wallet.Sign(raw)
	if err != nil {
		return "", fmt.Errorf("signing record %q: %w", rec.ID, err)
	}

	if err := s.store.SetData(ctx, recordKey(rec.ID), raw); err != nil {
		return "", fmt.Errorf("writing record %q: %w", rec.ID, err)
	}
	return hex.EncodeToString(sig), nil
}

// appendToIndex re-reads the key index, appends id, and writes it back.
// An unparsable existing index is reset rather than propagated, matching
// the load path's tolerance.
func (s *Syncer) appendToIndex(ctx context.Context, id string) error {
	ids, err := s.readIndex(ctx)
	if err != nil {
		return err
	}

	ids = append(ids, id)
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encoding key index: %w", err)
	}

	if err := s.store.SetData(ctx, IndexKey, raw); err != nil {
		return fmt.Errorf("writing key index: %w", err)
	}
	return nil
}

// newRecordID builds a client-generated identifier: unix timestamp plus a
// random suffix. Uniqueness is informal; nothing enforces it store-side.
func newRecordID(now time.Time) string {
	return fmt.Sprintf("%d_%s", now.Unix(), uuid.NewString()[:8])
}
