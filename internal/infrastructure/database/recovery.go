package database

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Logger is the logging interface used during recovery.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// OpenWithRecovery opens the store and applies migrations. If that fails in
// a recoverable way (see IsRecoverable) the database files are erased and
// the open is retried exactly once.
//
// Parameters:
//   - ctx: Context for migrations
//   - cfg: Database configuration
//   - logger: receives a warning when the store is erased (may be nil)
//
// Returns:
//   - *DB: migrated database
//   - error: the first unrecoverable error, or the error of the retry
func OpenWithRecovery(ctx context.Context, cfg Config, logger Logger) (*DB, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	db, err := openAndMigrate(ctx, cfg)
	if err == nil {
		return db, nil
	}
	if !IsRecoverable(err) {
		return nil, err
	}

	logger.Warn("storage unusable, erasing and recreating", "path", cfg.Path, "error", err)

	if err := Erase(cfg.Path); err != nil {
		return nil, err
	}

	db, err = openAndMigrate(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("reopening storage after erase: %w", err)
	}
	return db, nil
}

func openAndMigrate(ctx context.Context, cfg Config) (*DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, err
	}
	return db, nil
}

// Erase removes the database file and its WAL and shared-memory siblings.
// Missing files are not an error.
func Erase(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm", path + "-journal"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("erasing %s: %w", p, err)
		}
	}
	return nil
}
