package testsupport

import (
	"testing"

	"nutriscan/internal/config"
	"nutriscan/internal/imagestore"
	"nutriscan/internal/logging"
)

// MustOpenImageStore opens an imagestore.Store for tests and registers
// cleanup.
func MustOpenImageStore(t testing.TB, cfg *config.Config) *imagestore.Store {
	t.Helper()

	store, err := imagestore.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("imagestore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
