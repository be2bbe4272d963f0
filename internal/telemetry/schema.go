package telemetry

import (
	"database/sql"

	"codeberg.org/veldr/pointerstat/internal/errors"
)

// initSchema creates the append-only session sample log
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS samples (
            recorded_at INTEGER NOT NULL,
            elapsed REAL NOT NULL,
            polling_rate INTEGER NOT NULL,
            speed REAL NOT NULL,
            max_speed REAL NOT NULL,
            dpi REAL NOT NULL
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrStorageInit, err)
	}

	return nil
}
