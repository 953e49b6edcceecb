package history

import (
	"context"
	"log/slog"
	"sync"

	"nutriscan/internal/backend"
	"nutriscan/internal/logging"
)

// Entry is a remote history entry joined with whatever local assets could be
// reattached: the captured image and the swap suggestions recorded at log
// time. Both stay empty when no join record exists.
type Entry struct {
	backend.HistoryEntry
	ImageID  string
	ImageURI string
	Swaps    []string
}

// ImageResolver looks up stored images by id. Absence covers both misses
// and read failures.
type ImageResolver interface {
	Get(ctx context.Context, id string) (string, bool)
}

// JoinIndex resolves remote timestamps to local assets.
type JoinIndex interface {
	Image(timestamp string) (string, bool)
	Swaps(timestamp string) ([]string, bool)
}

// Hydrator joins remote history entries with locally stored captures.
type Hydrator struct {
	index  JoinIndex
	images ImageResolver
	logger *slog.Logger
}

// NewHydrator wires a hydrator from its collaborators.
func NewHydrator(index JoinIndex, images ImageResolver, logger *slog.Logger) *Hydrator {
	return &Hydrator{
		index:  index,
		images: images,
		logger: logging.NewComponentLogger(logger, "history"),
	}
}

// Hydrate attaches local images and swaps to remote entries. Every input
// entry appears in the output in its original order; a failed or missing
// lookup leaves that entry imageless rather than failing the list. Image
// resolution runs concurrently per entry.
func (h *Hydrator) Hydrate(ctx context.Context, remote []backend.HistoryEntry) []Entry {
	entries := make([]Entry, len(remote))
	var wg sync.WaitGroup

	for i, item := range remote {
		entries[i] = Entry{HistoryEntry: item}

		imageID, hasImage := h.index.Image(item.Time)
		if swaps, found := h.index.Swaps(item.Time); found {
			entries[i].Swaps = swaps
		}
		if !hasImage {
			continue
		}
		entries[i].ImageID = imageID

		wg.Add(1)
		go func(slot *Entry, id string) {
			defer wg.Done()
			uri, found := h.images.Get(ctx, id)
			if !found {
				h.logger.Debug("mapped image missing from store",
					logging.String("image_id", id),
					logging.String("timestamp", slot.Time))
				return
			}
			slot.ImageURI = uri
		}(&entries[i], imageID)
	}

	wg.Wait()
	return entries
}
