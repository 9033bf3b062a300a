package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/airzone-cloud/internal/config"
	"github.com/thatsimonsguy/airzone-cloud/internal/store"
)

var ErrEmptyCapture = errors.New("capture has no cycles")

// PrepareDataDirs creates the parent directories of every configured output file.
func PrepareDataDirs(cfg *config.Config) error {
	for _, path := range []string{cfg.DBPath, cfg.SnapshotFile, cfg.LogFile} {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// CheckCapture rejects captures that would replay nothing and logs entries
// that carry no device payload.
func CheckCapture(capture *store.Capture) error {
	if capture == nil || len(capture.Cycles) == 0 {
		return ErrEmptyCapture
	}

	entries := 0
	for i, cycle := range capture.Cycles {
		for j, entry := range cycle.Entries {
			if entry.Device == nil {
				log.Warn().Int("cycle", i).Int("entry", j).Msg("Capture entry has no device payload")
				continue
			}
			entries++
		}
	}

	log.Info().
		Int("cycles", len(capture.Cycles)).
		Int("entries", entries).
		Msg("Capture loaded")
	return nil
}
