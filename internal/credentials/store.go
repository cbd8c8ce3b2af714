package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/relay-core/internal/infrastructure/database"
)

// Credentials identify the access point the station joins.
type Credentials struct {
	SSID       string
	Passphrase string

	// Source records where the values came from ("env", "build", "stored").
	Source string
}

// Empty reports whether no SSID is set.
func (c Credentials) Empty() bool {
	return c.SSID == ""
}

// Store persists one set of credentials in the station_credentials table.
type Store struct {
	db  *database.DB
	now func() time.Time
}

// NewStore creates a store over a migrated database.
func NewStore(db *database.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Load returns the stored credentials.
//
// Returns:
//   - Credentials: the stored row, with Source "stored"
//   - error: ErrNotFound when no row exists
func (s *Store) Load(ctx context.Context) (Credentials, error) {
	var c Credentials
	err := s.db.QueryRowContext(ctx,
		"SELECT ssid, passphrase FROM station_credentials WHERE id = 1",
	).Scan(&c.SSID, &c.Passphrase)
	if errors.Is(err, sql.ErrNoRows) {
		return Credentials{}, ErrNotFound
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("loading credentials: %w", err)
	}
	c.Source = SourceStored
	return c, nil
}

// Save replaces the stored credentials.
func (s *Store) Save(ctx context.Context, c Credentials) error {
	if c.Empty() {
		return ErrMissingSSID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO station_credentials (id, ssid, passphrase, source, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ssid = excluded.ssid,
			passphrase = excluded.passphrase,
			source = excluded.source,
			updated_at = excluded.updated_at
	`, c.SSID, c.Passphrase, c.Source, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	return nil
}

// Erase deletes the stored credentials.
func (s *Store) Erase(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM station_credentials"); err != nil {
		return fmt.Errorf("erasing credentials: %w", err)
	}
	return nil
}
