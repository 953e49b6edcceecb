package reconcile

import (
	"os"
	"path/filepath"
	"testing"

	"nutriscan/internal/logging"
)

func newTestIndex(t *testing.T) (*Index, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reconcile.json")
	return NewIndex(path, logging.NewNop()), path
}

func TestIndexMapAndLookup(t *testing.T) {
	idx, _ := newTestIndex(t)

	if err := idx.MapImage("2026-02-01 12:30", "1700000000000-abc123def"); err != nil {
		t.Fatalf("MapImage failed: %v", err)
	}
	if err := idx.MapSwaps("2026-02-01 12:30", []string{"greek yogurt", "berries"}); err != nil {
		t.Fatalf("MapSwaps failed: %v", err)
	}

	id, found := idx.Image("2026-02-01 12:30")
	if !found || id != "1700000000000-abc123def" {
		t.Fatalf("expected image mapping, got %q found=%v", id, found)
	}
	swaps, found := idx.Swaps("2026-02-01 12:30")
	if !found || len(swaps) != 2 || swaps[0] != "greek yogurt" {
		t.Fatalf("unexpected swaps %v found=%v", swaps, found)
	}
}

func TestIndexMissIsNotAnError(t *testing.T) {
	idx, _ := newTestIndex(t)

	if _, found := idx.Image("2026-02-01 12:30"); found {
		t.Fatal("expected miss for unmapped timestamp")
	}
	if _, found := idx.Swaps("2026-02-01 12:30"); found {
		t.Fatal("expected miss for unmapped timestamp")
	}
}

func TestIndexPersistsAcrossReopen(t *testing.T) {
	idx, path := newTestIndex(t)

	if err := idx.MapImage("ts-1", "img-1"); err != nil {
		t.Fatalf("MapImage failed: %v", err)
	}
	if err := idx.MapSwaps("ts-1", []string{"swap a"}); err != nil {
		t.Fatalf("MapSwaps failed: %v", err)
	}

	reopened := NewIndex(path, logging.NewNop())
	if id, found := reopened.Image("ts-1"); !found || id != "img-1" {
		t.Fatalf("expected persisted image mapping, got %q found=%v", id, found)
	}
	if swaps, found := reopened.Swaps("ts-1"); !found || len(swaps) != 1 {
		t.Fatalf("expected persisted swaps, got %v found=%v", swaps, found)
	}
}

func TestIndexSurvivesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reconcile.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	idx := NewIndex(path, logging.NewNop())
	if idx.Count() != 0 {
		t.Fatalf("expected empty index after corrupt load, got %d", idx.Count())
	}
	if err := idx.MapImage("ts-1", "img-1"); err != nil {
		t.Fatalf("MapImage after corrupt load failed: %v", err)
	}
	if _, found := idx.Image("ts-1"); !found {
		t.Fatal("expected mapping to stick after corrupt load")
	}
}

func TestIndexRemoveDropsBothMappings(t *testing.T) {
	idx, _ := newTestIndex(t)

	if err := idx.MapImage("ts-1", "img-1"); err != nil {
		t.Fatalf("MapImage failed: %v", err)
	}
	if err := idx.MapSwaps("ts-1", []string{"swap"}); err != nil {
		t.Fatalf("MapSwaps failed: %v", err)
	}
	if err := idx.Remove("ts-1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, found := idx.Image("ts-1"); found {
		t.Fatal("expected image mapping removed")
	}
	if _, found := idx.Swaps("ts-1"); found {
		t.Fatal("expected swaps mapping removed")
	}
}

func TestIndexEmptyPathIsNoop(t *testing.T) {
	idx := NewIndex("", logging.NewNop())

	if err := idx.MapImage("ts-1", "img-1"); err != nil {
		t.Fatalf("MapImage on disabled index failed: %v", err)
	}
	if _, found := idx.Image("ts-1"); found {
		t.Fatal("disabled index should never report a hit")
	}
	if idx.Count() != 0 {
		t.Fatalf("disabled index count should be 0, got %d", idx.Count())
	}
}

func TestIndexEmptyTimestampRejected(t *testing.T) {
	idx, _ := newTestIndex(t)

	if err := idx.MapImage("  ", "img-1"); err == nil {
		t.Fatal("expected error for empty timestamp")
	}
	if err := idx.MapImage("ts-1", ""); err == nil {
		t.Fatal("expected error for empty image id")
	}
}

func TestIndexSwapsReturnsCopy(t *testing.T) {
	idx, _ := newTestIndex(t)

	if err := idx.MapSwaps("ts-1", []string{"a", "b"}); err != nil {
		t.Fatalf("MapSwaps failed: %v", err)
	}
	swaps, _ := idx.Swaps("ts-1")
	swaps[0] = "mutated"

	again, _ := idx.Swaps("ts-1")
	if again[0] != "a" {
		t.Fatalf("internal state mutated through returned slice: %v", again)
	}
}
