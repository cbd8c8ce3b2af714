package bootstrap

import (
	"context"

	"github.com/nerrad567/relay-core/internal/credentials"
	"github.com/nerrad567/relay-core/internal/infrastructure/database"
	"github.com/nerrad567/relay-core/internal/wifi"
)

// CredentialStorage is the storage step: it opens the database with the
// single erase-and-retry and resolves the station credentials.
type CredentialStorage struct {
	// Config locates the SQLite file.
	Config database.Config

	// Candidates are override credentials in precedence order
	// (environment, then build-time). Empty ones are skipped.
	Candidates []credentials.Credentials

	Logger Logger

	db       *database.DB
	resolved credentials.Credentials
}

// Initialize implements StorageInitializer.
func (s *CredentialStorage) Initialize(ctx context.Context) error {
	var dbLogger database.Logger
	if s.Logger != nil {
		dbLogger = s.Logger
	}

	db, err := database.OpenWithRecovery(ctx, s.Config, dbLogger)
	if err != nil {
		return err
	}

	creds, err := credentials.Resolve(ctx, credentials.NewStore(db), s.Candidates...)
	if err != nil {
		db.Close() //nolint:errcheck // the resolve error is what matters
		return err
	}

	s.db = db
	s.resolved = creds
	if s.Logger != nil {
		s.Logger.Info("station credentials resolved", "ssid", creds.SSID, "source", creds.Source)
	}
	return nil
}

// Credentials returns the resolved credentials. Valid after Initialize.
func (s *CredentialStorage) Credentials() credentials.Credentials {
	return s.resolved
}

// Station returns a station config for iface from the resolved credentials.
func (s *CredentialStorage) Station(iface string) wifi.StationConfig {
	return wifi.StationConfig{
		Interface:  iface,
		SSID:       s.resolved.SSID,
		Passphrase: s.resolved.Passphrase,
	}
}

// DB returns the open database, or nil before Initialize.
func (s *CredentialStorage) DB() *database.DB {
	return s.db
}

// Close closes the database.
func (s *CredentialStorage) Close() error {
	return s.db.Close()
}
