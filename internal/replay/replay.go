package replay

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/airzone-cloud/internal/state"
	"github.com/thatsimonsguy/airzone-cloud/internal/store"
)

// Stats summarizes one applied cycle.
type Stats struct {
	Created int
	Updated int
	Removed []string
	Failed  int
}

// ApplyCycle routes every payload of a cycle through the catalog, then drops
// the devices the cloud stopped reporting.
func ApplyCycle(catalog *state.Catalog, cycle store.Cycle) Stats {
	var stats Stats
	for _, entry := range cycle.Entries {
		created, err := catalog.Apply(entry.InstallationID, entry.WebServerID, entry.Device)
		if err != nil {
			stats.Failed++
			log.Warn().
				Err(err).
				Str("installation", entry.InstallationID).
				Str("webserver", entry.WebServerID).
				Msg("Skipping device payload")
			continue
		}
		if created {
			stats.Created++
		} else {
			stats.Updated++
		}
	}
	for _, id := range cycle.Removed {
		if catalog.Remove(id) {
			stats.Removed = append(stats.Removed, id)
		}
	}
	return stats
}

// Run applies the capture cycles in order, waiting interval between them, and
// calls done after each one. It stops early when ctx is cancelled.
func Run(ctx context.Context, catalog *state.Catalog, capture *store.Capture, interval time.Duration, done func(cycle int, stats Stats)) error {
	for i, cycle := range capture.Cycles {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		stats := ApplyCycle(catalog, cycle)
		log.Info().
			Int("cycle", i).
			Int("created", stats.Created).
			Int("updated", stats.Updated).
			Int("removed", len(stats.Removed)).
			Int("failed", stats.Failed).
			Msg("Applied cloud cycle")

		if done != nil {
			done(i, stats)
		}
	}
	return nil
}
