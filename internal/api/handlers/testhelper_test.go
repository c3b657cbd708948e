package handlers

import (
	"testing"

	"github.com/minhhq2805/prefdash/internal/keyvalue"
	"github.com/minhhq2805/prefdash/internal/syncer"
	"github.com/minhhq2805/prefdash/internal/wallet"
)

// newTestEnv builds a syncer over an in-memory store and a generated
// wallet, with the compute delay disabled for fast tests.
func newTestEnv(t *testing.T) (*syncer.Syncer, *keyvalue.Memory, *wallet.Provider) {
	t.Helper()

	store := keyvalue.NewMemory()
	w, err := wallet.Generate()
	if err != nil {
		t.Fatalf("generating wallet: %v", err)
	}
	return syncer.New(store, w, syncer.Options{}), store, w
}
