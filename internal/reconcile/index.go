package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"nutriscan/internal/logging"
)

// Index joins remote history entries with local assets. Both maps are keyed
// by the remote entry's display timestamp: one resolves to a local image id,
// the other to the swap suggestions the remote log does not store. The
// timestamp key carries no uniqueness guarantee; entries are best-effort and
// a miss is never an error.
type Index struct {
	path   string
	logger *slog.Logger
	lock   *flock.Flock
	mu     sync.RWMutex
	state  state
}

type state struct {
	Images map[string]string   `json:"images"`
	Swaps  map[string][]string `json:"swaps"`
}

func emptyState() state {
	return state{
		Images: make(map[string]string),
		Swaps:  make(map[string][]string),
	}
}

// NewIndex creates an index persisted at path. If path is empty the index is
// non-functional and every operation becomes a no-op. The file is created
// lazily on first write.
func NewIndex(path string, logger *slog.Logger) *Index {
	logger = logging.NewComponentLogger(logger, "reconcile")

	idx := &Index{
		path:   path,
		logger: logger,
		state:  emptyState(),
	}
	if path == "" {
		return idx
	}
	idx.lock = flock.New(path + ".lock")

	if err := idx.load(); err != nil {
		logger.Warn("failed to load reconcile index",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "index will start empty"),
			logging.String(logging.FieldImpact, "existing history entries will render without images"))
	}

	return idx
}

// MapImage records that the history entry at the given remote timestamp owns
// the local image id.
func (i *Index) MapImage(timestamp, imageID string) error {
	timestamp = strings.TrimSpace(timestamp)
	imageID = strings.TrimSpace(imageID)
	if timestamp == "" {
		return errors.New("remote timestamp cannot be empty")
	}
	if imageID == "" {
		return errors.New("image id cannot be empty")
	}
	if i.path == "" {
		return nil
	}

	return i.mutate(func(s *state) {
		s.Images[timestamp] = imageID
	})
}

// MapSwaps records swap suggestions for the history entry at the given
// remote timestamp. Empty suggestion lists are not persisted.
func (i *Index) MapSwaps(timestamp string, swaps []string) error {
	timestamp = strings.TrimSpace(timestamp)
	if timestamp == "" {
		return errors.New("remote timestamp cannot be empty")
	}
	if i.path == "" || len(swaps) == 0 {
		return nil
	}

	cp := make([]string, len(swaps))
	copy(cp, swaps)
	return i.mutate(func(s *state) {
		s.Swaps[timestamp] = cp
	})
}

// Image returns the local image id mapped to the remote timestamp, if any.
func (i *Index) Image(timestamp string) (string, bool) {
	timestamp = strings.TrimSpace(timestamp)
	if timestamp == "" || i.path == "" {
		return "", false
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	id, found := i.state.Images[timestamp]
	return id, found
}

// Swaps returns the swap suggestions mapped to the remote timestamp, if any.
func (i *Index) Swaps(timestamp string) ([]string, bool) {
	timestamp = strings.TrimSpace(timestamp)
	if timestamp == "" || i.path == "" {
		return nil, false
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	swaps, found := i.state.Swaps[timestamp]
	if !found {
		return nil, false
	}
	cp := make([]string, len(swaps))
	copy(cp, swaps)
	return cp, true
}

// Remove drops both mappings for a remote timestamp.
func (i *Index) Remove(timestamp string) error {
	timestamp = strings.TrimSpace(timestamp)
	if timestamp == "" {
		return errors.New("remote timestamp cannot be empty")
	}
	if i.path == "" {
		return nil
	}

	return i.mutate(func(s *state) {
		delete(s.Images, timestamp)
		delete(s.Swaps, timestamp)
	})
}

// Count returns the number of image mappings.
func (i *Index) Count() int {
	if i.path == "" {
		return 0
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	return len(i.state.Images)
}

// mutate serializes every write through one load/merge/save cycle. The file
// lock spans the cycle so a concurrent process cannot interleave between the
// reload and the save; in-memory state is refreshed from disk under the lock
// before the mutation applies.
func (i *Index) mutate(apply func(*state)) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.lock != nil {
		if err := i.lock.Lock(); err != nil {
			return fmt.Errorf("acquire index lock: %w", err)
		}
		defer func() { _ = i.lock.Unlock() }()
	}

	if err := i.loadLocked(); err != nil {
		i.logger.Warn("reloading reconcile index failed; writing over in-memory state",
			logging.Error(err))
	}

	apply(&i.state)

	if err := i.saveLocked(); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	return nil
}

func (i *Index) load() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.loadLocked()
}

func (i *Index) loadLocked() error {
	data, err := os.ReadFile(i.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return fmt.Errorf("read index file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	loaded := emptyState()
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse index file: %w", err)
	}
	if loaded.Images == nil {
		loaded.Images = make(map[string]string)
	}
	if loaded.Swaps == nil {
		loaded.Swaps = make(map[string][]string)
	}
	i.state = loaded
	return nil
}

// saveLocked writes the index to disk atomically.
func (i *Index) saveLocked() error {
	data, err := json.MarshalIndent(i.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	dir := filepath.Dir(i.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmpPath := i.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, i.path); err != nil {
		os.Remove(tmpPath) // cleanup on failure
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
