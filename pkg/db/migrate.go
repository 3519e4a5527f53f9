package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// TargetSchemaVersion is the highest schema version this build supports for
	// the memoirs component. The CLI passes it to UpgradeDB.
	TargetSchemaVersion int64 = 1
	// MemoirsComponent is the name of the memoirs table set in memoirs_versions.
	MemoirsComponent = "memoirs"
)

// GetComponentSchemaVersion retrieves the schema version for a given component.
// Returns 0 if the component is not found or the versions table doesn't exist.
func GetComponentSchemaVersion(db *sql.DB, componentName string) (int64, error) {
	query := `SELECT version FROM memoirs_versions WHERE component = ?;`
	row := db.QueryRow(query, componentName)

	var version int64
	err := row.Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		if strings.Contains(err.Error(), "no such table") && strings.Contains(err.Error(), "memoirs_versions") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan version for component '%s': %w", componentName, err)
	}
	return version, nil
}

// InitializeSchema creates every memoirs table and records schemaVersionToSet
// for the memoirs component.
func InitializeSchema(db *sql.DB, schemaVersionToSet int64) error {
	if _, err := db.Exec(SchemaV1); err != nil {
		return fmt.Errorf("failed to execute schema v1 SQL: %w", err)
	}

	insertVersionSQL := `
INSERT INTO memoirs_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch();`

	if _, err := db.Exec(insertVersionSQL, MemoirsComponent, schemaVersionToSet); err != nil {
		return fmt.Errorf("failed to insert/update version for component %s to %d: %w", MemoirsComponent, schemaVersionToSet, err)
	}
	return nil
}

// UpgradeDB brings the memoirs component of db to appTargetSchemaVersion.
// A fresh database is initialized; anything older or newer than the target is
// refused. dbIdentifierForLog only appears in logs and errors.
func UpgradeDB(db *sql.DB, dbIdentifierForLog string, appTargetSchemaVersion int64, logger zerolog.Logger) error {
	currentDBVersion, err := GetComponentSchemaVersion(db, MemoirsComponent)
	if err != nil {
		return err
	}

	log := logger.With().
		Str("component", MemoirsComponent).
		Str("database", dbIdentifierForLog).
		Int64("target_version", appTargetSchemaVersion).
		Logger()

	switch {
	case currentDBVersion == 0:
		log.Info().Msg("database uninitialized, creating schema")
		if err := InitializeSchema(db, appTargetSchemaVersion); err != nil {
			return fmt.Errorf("failed to initialize component %s in database '%s': %w", MemoirsComponent, dbIdentifierForLog, err)
		}
		log.Info().Msg("schema initialized")
		return nil
	case currentDBVersion == appTargetSchemaVersion:
		log.Debug().Int64("version", currentDBVersion).Msg("schema up to date")
		return nil
	case currentDBVersion < appTargetSchemaVersion:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is older than application's target schema version %d. Automatic migration from this older version is not yet supported", MemoirsComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	default:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is newer than application's target schema version %d. Please upgrade the application", MemoirsComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	}
}
