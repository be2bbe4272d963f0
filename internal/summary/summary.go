package summary

import (
	"sync"
	"time"

	"codeberg.org/veldr/pointerstat/internal/logger"
	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
)

const (
	rateMinHz  = 1
	rateMaxHz  = 100000
	speedMinMM = 1
	speedMaxMM = 1000000 // 1000 m/s in mm/s, far beyond any pointing device
	sigFigs    = 3
)

// Session aggregates the distribution of polling rates and speeds over a
// run. Observed on the hot paths, reported once at shutdown.
type Session struct {
	mu    sync.Mutex
	rate  *hdrhistogram.Histogram
	speed *hdrhistogram.Histogram
	start time.Time
}

// Stats is the distilled distribution report for one run
type Stats struct {
	Duration time.Duration

	RateSamples int64
	RateP50     int64
	RateP90     int64
	RateP99     int64
	RateMax     int64

	// Speeds in mm/s
	SpeedSamples int64
	SpeedP50     int64
	SpeedP90     int64
	SpeedP99     int64
	SpeedMax     int64
}

func New() *Session {
	return &Session{
		rate:  hdrhistogram.New(rateMinHz, rateMaxHz, sigFigs),
		speed: hdrhistogram.New(speedMinMM, speedMaxMM, sigFigs),
		start: time.Now(),
	}
}

// ObserveRate records one aggregator tick's events-per-second figure.
// Idle ticks (zero rate) are not part of the distribution.
func (s *Session) ObserveRate(hz int) {
	if hz <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.rate.RecordValue(int64(hz))
}

// ObserveSpeed records one refresh's speed estimate in meters per second
func (s *Session) ObserveSpeed(metersPerSecond float64) {
	mm := int64(metersPerSecond * 1000)
	if mm <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.speed.RecordValue(mm)
}

// Stats returns the current distribution report
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Duration:     time.Since(s.start),
		RateSamples:  s.rate.TotalCount(),
		RateP50:      s.rate.ValueAtQuantile(50),
		RateP90:      s.rate.ValueAtQuantile(90),
		RateP99:      s.rate.ValueAtQuantile(99),
		RateMax:      s.rate.Max(),
		SpeedSamples: s.speed.TotalCount(),
		SpeedP50:     s.speed.ValueAtQuantile(50),
		SpeedP90:     s.speed.ValueAtQuantile(90),
		SpeedP99:     s.speed.ValueAtQuantile(99),
		SpeedMax:     s.speed.Max(),
	}
}

// Log writes the end-of-session report
func (s *Session) Log() {
	stats := s.Stats()

	logger.Info().
		Dur("duration", stats.Duration).
		Int64("rate_samples", stats.RateSamples).
		Int64("rate_p50", stats.RateP50).
		Int64("rate_p90", stats.RateP90).
		Int64("rate_p99", stats.RateP99).
		Int64("rate_max", stats.RateMax).
		Int64("speed_samples", stats.SpeedSamples).
		Int64("speed_mm_p50", stats.SpeedP50).
		Int64("speed_mm_p90", stats.SpeedP90).
		Int64("speed_mm_p99", stats.SpeedP99).
		Int64("speed_mm_max", stats.SpeedMax).
		Msg("Session summary")
}
