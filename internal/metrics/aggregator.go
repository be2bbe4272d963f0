package metrics

import (
	"context"
	"time"

	"codeberg.org/veldr/pointerstat/internal/logger"
)

// RunAggregator is the polling-rate aggregation loop. Once per tick it
// folds the event counter into an events-per-second sample and resets it.
// Sleeping the tick interval outside the lock keeps the lock hold time to
// the aggregation itself. onRate, when non-nil, observes each tick's rate.
func RunAggregator(ctx context.Context, state *State, tick time.Duration, onRate func(int)) {
	logger.Debug().Dur("tick", tick).Msg("Polling-rate aggregator started")

	for {
		if ctx.Err() != nil || !state.Running() {
			logger.Debug().Msg("Polling-rate aggregator stopped")
			return
		}

		if rate, ticked := state.TickPollingRate(time.Now(), tick); ticked && onRate != nil {
			onRate(rate)
		}
		time.Sleep(tick)
	}
}
