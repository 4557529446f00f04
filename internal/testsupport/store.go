package testsupport

import (
	"testing"

	"ytharvest/internal/config"
	"ytharvest/internal/store"
)

// MustOpenStore opens the state database for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(cfg.Storage.Database)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}
