package imagestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"nutriscan/internal/config"
	"nutriscan/internal/logging"
)

// Store persists captured images in SQLite, keyed by a generated id with no
// relationship to any remote identifier.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Image is one stored capture. Size is populated instead of Data when only
// metadata is listed.
type Image struct {
	ID        string
	Data      string
	Size      int64
	CreatedAt time.Time
}

// Open initializes or connects to the image database and applies the schema.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "images.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:     db,
		path:   dbPath,
		logger: logging.NewComponentLogger(logger, "imagestore"),
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Save stores an image data URI and returns its generated id. Entries are
// append-only; there is no update path.
func (s *Store) Save(ctx context.Context, dataURI string) (string, error) {
	if !strings.HasPrefix(dataURI, "data:image") {
		return "", errors.New("save image: not an image data uri")
	}

	now := time.Now().UTC()
	id := newImageID(now)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO images (id, data, created_at) VALUES (?, ?, ?)`,
		id,
		dataURI,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert image: %w", err)
	}

	s.logger.Debug("image saved",
		logging.String("image_id", id),
		logging.Int("bytes", len(dataURI)))
	return id, nil
}

// Get resolves an image by id. Misses and storage failures both present as
// absent; callers treat local images as best-effort.
func (s *Store) Get(ctx context.Context, id string) (string, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", false
	}

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM images WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("image lookup failed",
				logging.String("image_id", id),
				logging.Error(err),
				logging.String(logging.FieldImpact, "history entry renders without image"))
		}
		return "", false
	}
	return data, true
}

// List returns stored image metadata, newest first. Image data is omitted.
func (s *Store) List(ctx context.Context) ([]Image, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, length(data), created_at FROM images ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var (
			img       Image
			createdAt string
		)
		if err := rows.Scan(&img.ID, &img.Size, &createdAt); err != nil {
			return nil, fmt.Errorf("scan image row: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			img.CreatedAt = parsed
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// PurgeOlderThan removes images created before the cutoff and returns the
// number deleted.
func (s *Store) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM images WHERE created_at < ?`,
		cutoff.Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("purge images: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge rows affected: %w", err)
	}
	if removed > 0 {
		s.logger.Info("purged old images",
			logging.Int64("removed", removed),
			logging.Int("older_than_days", days))
	}
	return removed, nil
}

// newImageID mirrors the historical id shape: unix milliseconds plus a short
// random suffix. The timestamp prefix keeps ids roughly sortable.
func newImageID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}
