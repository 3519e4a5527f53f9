package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver (cgo)
	_ "modernc.org/sqlite"          // SQLite driver (pure Go)
)

// Driver names as registered with database/sql.
const (
	DriverCGO  = "sqlite3"
	DriverPure = "sqlite"
)

// validSyncModes lists the allowed values for the synchronous pragma.
var validSyncModes = map[string]bool{
	"OFF":    true,
	"NORMAL": true,
	"FULL":   true,
	"EXTRA":  true,
}

// Options describes how to open the memoirs database.
type Options struct {
	// Driver is DriverCGO (default) or DriverPure.
	Driver string
	// WAL switches journal_mode to WAL.
	WAL bool
	// Sync sets the synchronous pragma (OFF, NORMAL, FULL, EXTRA).
	Sync string
}

// OpenDBConnection opens a SQLite database at baseDSN with the cgo driver.
// enableWAL sets the journal_mode to WAL if true.
// syncPragma sets the synchronous pragma (e.g., "OFF", "NORMAL", "FULL", "EXTRA").
func OpenDBConnection(baseDSN string, enableWAL bool, syncPragma string) (*sql.DB, error) {
	return Open(baseDSN, Options{Driver: DriverCGO, WAL: enableWAL, Sync: syncPragma})
}

// Open opens a SQLite database with the given options, pings it and enables
// foreign keys. The pool is capped at a single connection: SQLite has one
// writer, and an in-memory database only exists on the connection that made it.
func Open(baseDSN string, opts Options) (*sql.DB, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverCGO
	}

	syncMode := ""
	if opts.Sync != "" {
		syncMode = strings.ToUpper(opts.Sync)
		if !validSyncModes[syncMode] {
			return nil, fmt.Errorf("invalid sync pragma value: %s. Must be one of OFF, NORMAL, FULL, EXTRA", opts.Sync)
		}
	}

	var params url.Values
	switch driver {
	case DriverCGO:
		params = cgoParams(opts.WAL, syncMode)
	case DriverPure:
		params = pureParams(opts.WAL, syncMode)
	default:
		return nil, fmt.Errorf("unsupported sqlite driver %q. Must be %s or %s", driver, DriverCGO, DriverPure)
	}

	constructedDSN := baseDSN
	if len(params) > 0 {
		if strings.Contains(baseDSN, "?") {
			constructedDSN += "&" + params.Encode()
		} else {
			constructedDSN += "?" + params.Encode()
		}
	}

	db, err := sql.Open(driver, constructedDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database with DSN '%s': %w", constructedDSN, err)
	}
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database with DSN '%s': %w", constructedDSN, err)
	}

	if _, err = db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign key support for DSN '%s': %w", constructedDSN, err)
	}

	return db, nil
}

func cgoParams(wal bool, syncMode string) url.Values {
	params := url.Values{}
	if wal {
		params.Add("_journal_mode", "WAL")
	}
	if syncMode != "" {
		params.Add("_synchronous", syncMode)
	}
	return params
}

// pureParams uses the _pragma=name(value) form understood by modernc.org/sqlite.
func pureParams(wal bool, syncMode string) url.Values {
	params := url.Values{}
	if wal {
		params.Add("_pragma", "journal_mode(WAL)")
	}
	if syncMode != "" {
		params.Add("_pragma", "synchronous("+syncMode+")")
	}
	return params
}
