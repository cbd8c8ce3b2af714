package database

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// Domain errors for the database package.
var (
	// ErrNewVersionFound is returned by Migrate when the store records a
	// schema version this binary does not know, i.e. it was written by a
	// newer release.
	ErrNewVersionFound = errors.New("database: schema written by a newer version")

	// ErrMigrationNotFound is returned by MigrateDown when the latest applied
	// version has no migration file.
	ErrMigrationNotFound = errors.New("database: migration not found")
)

// IsRecoverable reports whether err means the store should be erased and
// recreated: a newer schema, a full disk image, or a file that is not a
// usable SQLite database.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNewVersionFound) {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrFull, sqlite3.ErrNotADB, sqlite3.ErrCorrupt:
			return true
		}
	}
	return false
}
