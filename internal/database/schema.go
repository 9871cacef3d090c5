package database

import (
	"database/sql"
	"fmt"
)

// Schema statements applied at startup. Timestamps are stored as unix
// seconds. Idempotent; there is no legacy data to migrate between
// shapes, so versioned migrations are overkill.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS safety_reports (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		latitude    REAL NOT NULL,
		longitude   REAL NOT NULL,
		geohash     TEXT NOT NULL,
		description TEXT NOT NULL,
		type        TEXT NOT NULL,
		severity    INTEGER NOT NULL DEFAULT 3,
		timestamp   INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_geohash ON safety_reports(geohash)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON safety_reports(timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_latlng ON safety_reports(latitude, longitude)`,
	`CREATE TABLE IF NOT EXISTS sos_events (
		id            TEXT PRIMARY KEY,
		user_id       TEXT,
		latitude      REAL NOT NULL,
		longitude     REAL NOT NULL,
		contacts_sent INTEGER NOT NULL,
		status        TEXT NOT NULL DEFAULT 'sent',
		timestamp     INTEGER NOT NULL
	)`,
}

// Migrate applies the schema.
func Migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
