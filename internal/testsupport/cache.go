package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"mapi/internal/transport"
)

// MustOpenCache opens a response cache in a temp directory and registers
// cleanup.
func MustOpenCache(t testing.TB) *transport.Cache {
	t.Helper()

	cache, err := transport.OpenCache(context.Background(), filepath.Join(t.TempDir(), "responses.db"), 0)
	if err != nil {
		t.Fatalf("transport.OpenCache: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Close()
	})
	return cache
}
