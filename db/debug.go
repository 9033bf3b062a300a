package db

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

func ShowSnapshotCLI(dbPath, id string, out io.Writer) error {
	dbConn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	snap, err := GetSnapshot(dbConn, id)
	if err != nil {
		return err
	}
	history, err := CountHistory(dbConn, id)
	if err != nil {
		return err
	}
	if err := writeJSON(out, snap.Data); err != nil {
		return err
	}
	fmt.Fprintf(out, "history rows: %d\n", history)
	return nil
}

func ListProblemDevicesCLI(dbPath string, out io.Writer) error {
	dbConn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	ids, err := ListProblemDevices(dbConn)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

func ListSnapshotsCLI(dbPath string, out io.Writer) error {
	dbConn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	snaps, err := ListSnapshots(dbConn)
	if err != nil {
		return err
	}
	for _, s := range snaps {
		fmt.Fprintf(out, "%s\t%s\tavailable=%t\tproblems=%t\t%s\n",
			s.DeviceID, s.Name, s.Available, s.Problems, s.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

func DeleteSnapshotCLI(dbPath, id string) error {
	dbConn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer dbConn.Close()
	return DeleteSnapshot(dbConn, id)
}

func PruneHistoryCLI(dbPath string, keep time.Duration, out io.Writer) error {
	dbConn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	n, err := PruneHistory(dbConn, time.Now().Add(-keep))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "pruned %d history rows\n", n)
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
