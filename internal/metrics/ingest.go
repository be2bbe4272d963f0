package metrics

import (
	"context"
	"time"

	"codeberg.org/veldr/pointerstat/internal/input"
	"codeberg.org/veldr/pointerstat/internal/logger"
)

// RunIngest is the motion ingestion loop. It polls the source for at most
// one event per iteration, records it under the state lock, and sleeps a
// short interval on empty polls to avoid busy-spinning. It exits when the
// state stops running or the context is cancelled; a source read error is
// returned to the caller (the pipeline cannot continue without events).
func RunIngest(ctx context.Context, src input.Source, state *State, idleSleep time.Duration) error {
	logger.Debug().Dur("idle_sleep", idleSleep).Msg("Motion ingestion loop started")

	for {
		if ctx.Err() != nil || !state.Running() {
			logger.Debug().Msg("Motion ingestion loop stopped")
			return nil
		}

		m, ok, err := src.Poll()
		if err != nil {
			return err
		}

		if ok {
			state.RecordMotion(m.DX, m.DY, time.Now())
		} else {
			time.Sleep(idleSleep)
		}
	}
}
