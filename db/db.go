package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	device_id TEXT PRIMARY KEY,
	installation_id TEXT NOT NULL,
	webserver_id TEXT NOT NULL,
	name TEXT NOT NULL,
	available BOOLEAN NOT NULL,
	problems BOOLEAN NOT NULL,
	data TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	device_id TEXT NOT NULL,
	data TEXT NOT NULL,
	recorded_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshot_history_device ON snapshot_history (device_id, recorded_at);
`

// Open opens the snapshot database at dbPath and applies the schema.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := ApplyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	log.Debug().Str("path", dbPath).Msg("Snapshot database ready")
	return db, nil
}

func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func marshalJSON(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}
