// Package testutil provides shared test helpers for setting up vaults
// and history databases.
package testutil

import (
	"os"
	"testing"

	"github.com/aldwin/othala/internal/history"
	"github.com/aldwin/othala/internal/storage"
)

// TestHistory creates a temporary SQLite version log that is
// automatically cleaned up.
func TestHistory(t *testing.T) *history.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "othala-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	store, err := history.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}
