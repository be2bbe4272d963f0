package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"codeberg.org/veldr/pointerstat/internal/config"
	"codeberg.org/veldr/pointerstat/internal/input"
	"codeberg.org/veldr/pointerstat/internal/logger"
	"codeberg.org/veldr/pointerstat/internal/metrics"
	"codeberg.org/veldr/pointerstat/internal/monitor"
	"codeberg.org/veldr/pointerstat/internal/pid"
	"codeberg.org/veldr/pointerstat/internal/server"
	"codeberg.org/veldr/pointerstat/internal/summary"
	"codeberg.org/veldr/pointerstat/internal/telemetry"
)

var (
	cfg    *config.Config
	device *input.Device
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.IsDebug(), cfg.IsVerbose(), logger.IsService())
	logger.Debug().Msg("Config loaded")

	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}

	// The pipeline cannot run without a device handle
	device, err = input.Open(cfg.Device)
	if err != nil {
		_ = pid.Remove()
		logger.Fatal().Err(err).Msg("failed to open pointing device")
	}
}

func main() {
	defer cleanup()

	state := metrics.NewState(cfg.DPI)
	sess := summary.New()

	recorder, err := telemetry.NewService(telemetry.Config{
		Enabled: cfg.Telemetry,
		DBPath:  cfg.TelemetryDB,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	hub := server.NewHub(state, cfg.WindowMS)
	go hub.Run(ctx)
	go func() {
		if err := server.Serve(ctx, cfg.Listen, hub); err != nil {
			logger.Error().Err(err).Msg("state endpoint failed")
			cancel()
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		idleSleep := time.Duration(cfg.IdleSleepUS) * time.Microsecond
		if err := metrics.RunIngest(ctx, device, state, idleSleep); err != nil {
			logger.Error().Err(err).Msg("motion ingestion failed")
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		tick := time.Duration(cfg.TickMS) * time.Millisecond
		metrics.RunAggregator(ctx, state, tick, sess.ObserveRate)
	}()

	if err := loop(ctx, state, hub, sess, recorder); err != nil {
		logger.Error().Err(err).Msg("error in refresh loop")
	}

	// Cooperative shutdown: both background loops observe the flag at
	// their next iteration
	state.Stop()
	cancel()
	wg.Wait()

	if err := recorder.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close telemetry")
	}
	sess.Log()
}

// loop is the consumer refresh cycle: one Refresh per tick, fanned out to
// every presentation sink
func loop(
	ctx context.Context,
	state *metrics.State,
	hub *server.Hub,
	sess *summary.Session,
	recorder telemetry.Recorder,
) error {
	refresh := time.Second / time.Duration(cfg.RefreshHz)
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	var rend *monitor.Renderer
	if cfg.Monitor {
		rend = monitor.New()
		logger.Info().Msg("Monitor mode activated")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			snap := state.Refresh(time.Now(), hub.Window())

			hub.BroadcastSnapshot(snap)
			sess.ObserveSpeed(snap.Speed)
			if rend != nil {
				rend.Render(snap)
			}
			if err := recorder.Record(ctx, &snap); err != nil {
				logger.Warn().Err(err).Msg("failed to record telemetry sample")
			}
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func cleanup() {
	if err := device.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close input device")
	}
	if err := pid.Remove(); err != nil {
		logger.Error().Err(err).Msg("failed to remove PID file")
	}
	logger.Info().Msg("Exiting...")
}
