// Package sweep evicts expired entries from the persistent side-cache in
// the background while a long-lived command runs.
package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/taskdock/taskdock/internal/data/stores"
)

// Start sweeps expired KV entries once immediately, then on each
// interval until ctx is cancelled. Most commands exit well before the
// first tick, so the up-front sweep is the one that usually runs.
func Start(ctx context.Context, kvStore *stores.KVStore, interval time.Duration) {
	if err := kvStore.SweepExpired(ctx); err != nil {
		log.Debug().Err(err).Msg("kv sweep failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := kvStore.SweepExpired(ctx); err != nil {
				log.Debug().Err(err).Msg("kv sweep failed")
			}
		}
	}
}
