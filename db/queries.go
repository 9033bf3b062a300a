package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/thatsimonsguy/airzone-cloud/internal/device"
)

// Snapshot is a stored device snapshot with its indexed columns.
type Snapshot struct {
	DeviceID       string
	InstallationID string
	WebServerID    string
	Name           string
	Available      bool
	Problems       bool
	Data           map[string]any
	UpdatedAt      time.Time
}

// FromData extracts the indexed columns from a device snapshot.
func FromData(snap map[string]any) Snapshot {
	s := Snapshot{Data: snap}
	s.DeviceID, _ = snap[device.KeyID].(string)
	s.InstallationID, _ = snap[device.KeyInstallation].(string)
	s.WebServerID, _ = snap[device.KeyWebServer].(string)
	s.Name, _ = snap[device.KeyName].(string)
	s.Available, _ = snap[device.KeyAvailable].(bool)
	s.Problems, _ = snap[device.KeyProblems].(bool)
	return s
}

const snapshotColumns = `device_id, installation_id, webserver_id, name, available, problems, data, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var s Snapshot
	var data, updatedAt string
	if err := row.Scan(&s.DeviceID, &s.InstallationID, &s.WebServerID, &s.Name, &s.Available, &s.Problems, &data, &updatedAt); err != nil {
		return s, err
	}
	if err := json.Unmarshal([]byte(data), &s.Data); err != nil {
		return s, fmt.Errorf("decode snapshot %s: %w", s.DeviceID, err)
	}
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return s, nil
}

// GetSnapshot retrieves the latest snapshot of a device.
func GetSnapshot(db *sql.DB, id string) (*Snapshot, error) {
	row := db.QueryRow(`SELECT `+snapshotColumns+` FROM snapshots WHERE device_id = ?`, id)
	s, err := scanSnapshot(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", id, err)
	}
	return &s, nil
}

// ListSnapshots retrieves every latest snapshot ordered by device id.
func ListSnapshots(db *sql.DB) ([]Snapshot, error) {
	rows, err := db.Query(`SELECT ` + snapshotColumns + ` FROM snapshots ORDER BY device_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// ListProblemDevices returns the ids of devices whose latest snapshot has problems.
func ListProblemDevices(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT device_id FROM snapshots WHERE problems = TRUE ORDER BY device_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query problem devices: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan device id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountHistory returns how many snapshots were recorded for a device.
func CountHistory(db *sql.DB, id string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM snapshot_history WHERE device_id = ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count history for %s: %w", id, err)
	}
	return n, nil
}
