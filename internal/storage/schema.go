package storage

import (
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 2

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createRemappedArtifactsTable(tx); err != nil {
			return err
		}
		if err := addArtifactHopsColumn(tx); err != nil {
			return err
		}
		if err := createMappingDependenciesTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("Database schema is up to date", "version", version)
		return nil
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	db.logger.Info("Running database migrations",
		"from_version", version,
		"to_version", currentSchemaVersion,
	)

	return db.WithTx(func(tx *sql.Tx) error {
		if version < 1 {
			if err := createSchemaVersionTable(tx); err != nil {
				return err
			}
			if err := createRemappedArtifactsTable(tx); err != nil {
				return err
			}
		}
		if version < 2 {
			// v2 records the hop route and fetched dependency checksums
			if err := addArtifactHopsColumn(tx); err != nil {
				return err
			}
			if err := createMappingDependenciesTable(tx); err != nil {
				return err
			}
		}
		return setSchemaVersion(tx, currentSchemaVersion)
	})
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("DELETE FROM schema_version")
	if err != nil {
		return err
	}
	_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// createSchemaVersionTable creates the schema_version tracking table
func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createRemappedArtifactsTable creates the remapped_artifacts table, one row
// per cache key.
func createRemappedArtifactsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS remapped_artifacts (
			cache_key TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			input_path TEXT NOT NULL,
			source_namespace TEXT NOT NULL,
			destination_namespace TEXT NOT NULL,
			dependencies TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		CREATE INDEX IF NOT EXISTS idx_remapped_artifacts_input
		ON remapped_artifacts(input_path)
	`)
	return err
}

func addArtifactHopsColumn(tx *sql.Tx) error {
	_, err := tx.Exec(`ALTER TABLE remapped_artifacts ADD COLUMN hops TEXT NOT NULL DEFAULT ''`)
	return err
}

// createMappingDependenciesTable creates the mapping_dependencies table
func createMappingDependenciesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS mapping_dependencies (
			name TEXT NOT NULL,
			version TEXT NOT NULL,
			path TEXT NOT NULL,
			sha1 TEXT NOT NULL,
			fetched_at TEXT NOT NULL,
			PRIMARY KEY (name, version)
		)
	`)
	return err
}
