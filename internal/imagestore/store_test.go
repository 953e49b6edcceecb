package imagestore_test

import (
	"context"
	"strings"
	"testing"

	"nutriscan/internal/testsupport"
)

const sampleURI = "data:image/jpeg;base64,/9j/4AAQSkZJRg=="

func TestSaveAndGetRoundTrip(t *testing.T) {
	store := testsupport.MustOpenImageStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	id, err := store.Save(ctx, sampleURI)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}
	if !strings.Contains(id, "-") {
		t.Fatalf("id %q missing timestamp-suffix shape", id)
	}

	data, ok := store.Get(ctx, id)
	if !ok {
		t.Fatal("expected stored image")
	}
	if data != sampleURI {
		t.Fatalf("round trip mismatch: got %q", data)
	}
}

func TestSaveGeneratesUniqueIDs(t *testing.T) {
	store := testsupport.MustOpenImageStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		id, err := store.Save(ctx, sampleURI)
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestSaveRejectsNonImageData(t *testing.T) {
	store := testsupport.MustOpenImageStore(t, testsupport.NewConfig(t))

	if _, err := store.Save(context.Background(), "https://example.com/pic.jpg"); err == nil {
		t.Fatal("expected error for non data-uri input")
	}
}

func TestGetMissIsAbsentNotError(t *testing.T) {
	store := testsupport.MustOpenImageStore(t, testsupport.NewConfig(t))

	if _, ok := store.Get(context.Background(), "nope"); ok {
		t.Fatal("expected miss")
	}
	if _, ok := store.Get(context.Background(), ""); ok {
		t.Fatal("expected miss for empty id")
	}
}

func TestListNewestFirst(t *testing.T) {
	store := testsupport.MustOpenImageStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first, err := store.Save(ctx, sampleURI)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := store.Save(ctx, sampleURI)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	images, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if images[0].ID != second && images[0].ID != first {
		t.Fatalf("unexpected ids: %#v", images)
	}
	if images[0].Size == 0 {
		t.Fatal("expected size metadata")
	}
	if !images[0].CreatedAt.After(images[1].CreatedAt) && !images[0].CreatedAt.Equal(images[1].CreatedAt) {
		t.Fatalf("expected newest first ordering: %v before %v", images[0].CreatedAt, images[1].CreatedAt)
	}
}

func TestPurgeOlderThan(t *testing.T) {
	store := testsupport.MustOpenImageStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := store.Save(ctx, sampleURI); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Fresh images survive any positive cutoff.
	removed, err := store.PurgeOlderThan(ctx, 30)
	if err != nil {
		t.Fatalf("PurgeOlderThan: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected nothing purged, got %d", removed)
	}

	// Zero or negative days is a no-op, not a full wipe.
	removed, err = store.PurgeOlderThan(ctx, 0)
	if err != nil {
		t.Fatalf("PurgeOlderThan: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected no-op purge, got %d", removed)
	}

	images, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("image should survive purge, got %d entries", len(images))
	}
}
