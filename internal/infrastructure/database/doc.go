// Package database provides SQLite storage for Relay Core.
//
// The controller keeps very little on disk: the station credentials and the
// schema bookkeeping. Output levels are never persisted.
//
// # Recovery
//
// OpenWithRecovery treats an unusable store as disposable. When the file is
// not a database, is corrupt, has run out of space, or was migrated by a
// newer release, the files are erased and recreated once. Any other error,
// or a failure after the erase, is returned to the caller and is fatal at
// boot.
//
// # Usage
//
//	db, err := database.OpenWithRecovery(ctx, database.Config{
//	    Path:        cfg.Storage.Path,
//	    WALMode:     cfg.Storage.WALMode,
//	    BusyTimeout: cfg.Storage.BusyTimeout,
//	}, logger)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
// Migrations are embedded by the migrations package and follow the
// YYYYMMDD_HHMMSS_description.{up,down}.sql naming scheme.
package database
