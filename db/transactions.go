package db

import (
	"database/sql"
	"fmt"
	"time"
)

// StartTransaction starts a new database transaction.
func StartTransaction(db *sql.DB) (*sql.Tx, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	return tx, nil
}

// CommitTransaction commits the given transaction.
func CommitTransaction(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RollbackTransaction rolls back the given transaction.
func RollbackTransaction(tx *sql.Tx) {
	tx.Rollback()
}

// SaveSnapshots stores the latest snapshot of every device and appends each
// one to the history, in a single transaction.
func SaveSnapshots(db *sql.DB, snaps []map[string]any, at time.Time) error {
	tx, err := StartTransaction(db)
	if err != nil {
		return err
	}
	for _, snap := range snaps {
		if err := UpsertSnapshotWithTx(tx, snap, at); err != nil {
			RollbackTransaction(tx)
			return err
		}
	}
	return CommitTransaction(tx)
}

func UpsertSnapshotWithTx(tx *sql.Tx, snap map[string]any, at time.Time) error {
	s := FromData(snap)
	if s.DeviceID == "" {
		return fmt.Errorf("snapshot without device id")
	}
	data := marshalJSON(snap)
	ts := at.UTC().Format(time.RFC3339)

	_, err := tx.Exec(`INSERT INTO snapshots (device_id, installation_id, webserver_id, name, available, problems, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			installation_id = excluded.installation_id,
			webserver_id = excluded.webserver_id,
			name = excluded.name,
			available = excluded.available,
			problems = excluded.problems,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		s.DeviceID, s.InstallationID, s.WebServerID, s.Name, s.Available, s.Problems, data, ts)
	if err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", s.DeviceID, err)
	}

	_, err = tx.Exec(`INSERT INTO snapshot_history (device_id, data, recorded_at) VALUES (?, ?, ?)`, s.DeviceID, data, ts)
	if err != nil {
		return fmt.Errorf("record snapshot history %s: %w", s.DeviceID, err)
	}
	return nil
}

// DeleteSnapshot removes a device's latest snapshot and its history.
func DeleteSnapshot(db *sql.DB, id string) error {
	tx, err := StartTransaction(db)
	if err != nil {
		return err
	}
	if err := DeleteSnapshotWithTx(tx, id); err != nil {
		RollbackTransaction(tx)
		return err
	}
	return CommitTransaction(tx)
}

func DeleteSnapshotWithTx(tx *sql.Tx, id string) error {
	if _, err := tx.Exec(`DELETE FROM snapshots WHERE device_id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM snapshot_history WHERE device_id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshot history %s: %w", id, err)
	}
	return nil
}

// PruneHistory drops history rows recorded before cutoff.
func PruneHistory(db *sql.DB, cutoff time.Time) (int64, error) {
	res, err := db.Exec(`DELETE FROM snapshot_history WHERE recorded_at < ?`, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("prune snapshot history: %w", err)
	}
	return res.RowsAffected()
}
