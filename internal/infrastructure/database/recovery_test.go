package database

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.warnings = append(l.warnings, msg)
}

func recoveryConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Path:        filepath.Join(t.TempDir(), "relaycore.db"),
		WALMode:     true,
		BusyTimeout: 1,
	}
}

func TestOpenWithRecovery_FreshStore(t *testing.T) {
	useTestMigrations(t)
	cfg := recoveryConfig(t)
	logger := &recordingLogger{}

	db, err := OpenWithRecovery(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("OpenWithRecovery() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // test cleanup

	if len(logger.warnings) != 0 {
		t.Errorf("warnings = %v, want none", logger.warnings)
	}
	if _, err := db.ExecContext(context.Background(), "INSERT INTO test_items (name) VALUES ('x')"); err != nil {
		t.Errorf("migrated table unusable: %v", err)
	}
}

func TestOpenWithRecovery_NotADatabase(t *testing.T) {
	useTestMigrations(t)
	cfg := recoveryConfig(t)

	garbage := bytes.Repeat([]byte("definitely not sqlite "), 200)
	if err := os.WriteFile(cfg.Path, garbage, 0o600); err != nil {
		t.Fatal(err)
	}

	logger := &recordingLogger{}
	db, err := OpenWithRecovery(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("OpenWithRecovery() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // test cleanup

	if len(logger.warnings) != 1 {
		t.Errorf("warnings = %v, want exactly one", logger.warnings)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() after recovery error = %v", err)
	}
}

func TestOpenWithRecovery_NewerSchemaErased(t *testing.T) {
	useTestMigrations(t)
	cfg := recoveryConfig(t)
	ctx := context.Background()

	db, err := OpenWithRecovery(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("first open error = %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO test_items (name) VALUES ('old')"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES ('29991231_235959', '2999-12-31T23:59:59Z')",
	); err != nil {
		t.Fatal(err)
	}
	db.Close() //nolint:errcheck // reopened below

	db, err = OpenWithRecovery(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close() //nolint:errcheck // test cleanup

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM test_items").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("rows after erase = %d, want 0", n)
	}
}

func TestOpenWithRecovery_UnrecoverableNotErased(t *testing.T) {
	useTestMigrations(t)

	// A directory where the file should be cannot be opened and is not a
	// recoverable SQLite condition.
	dir := t.TempDir()
	cfg := Config{Path: dir, BusyTimeout: 1}

	_, err := OpenWithRecovery(context.Background(), cfg, nil)
	if err == nil {
		t.Fatal("OpenWithRecovery() on a directory succeeded")
	}
	if _, statErr := os.Stat(dir); statErr != nil {
		t.Errorf("directory removed: %v", statErr)
	}
}

func TestErase(t *testing.T) {
	base := filepath.Join(t.TempDir(), "relaycore.db")
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.WriteFile(base+suffix, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	if err := Erase(base); err != nil {
		t.Fatalf("Erase() error = %v", err)
	}
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if _, err := os.Stat(base + suffix); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s still exists", base+suffix)
		}
	}

	// Erasing again is a no-op.
	if err := Erase(base); err != nil {
		t.Errorf("second Erase() error = %v", err)
	}
}

func TestIsRecoverable(t *testing.T) {
	if IsRecoverable(nil) {
		t.Error("IsRecoverable(nil) = true")
	}
	if IsRecoverable(errors.New("disk on fire")) {
		t.Error("IsRecoverable(plain error) = true")
	}
	wrapped := errors.Join(errors.New("context"), ErrNewVersionFound)
	if !IsRecoverable(wrapped) {
		t.Error("IsRecoverable(wrapped ErrNewVersionFound) = false")
	}
	if !strings.Contains(ErrNewVersionFound.Error(), "newer") {
		t.Errorf("ErrNewVersionFound = %q", ErrNewVersionFound)
	}
}
