package metrics

import (
	"math"
	"strconv"
	"sync"
	"time"
)

const (
	// DefaultDPI is used when no valid device resolution is configured
	DefaultDPI = 1600.0

	// DefaultWindowMS is the averaging window applied when the
	// user-provided window text is malformed or non-positive
	DefaultWindowMS = 5000.0

	// plotRetentionSec is how long plotted series are kept for display,
	// independent of the speed averaging window
	plotRetentionSec = 5.0

	// minWindowSec floors the speed denominator so a near-zero window
	// cannot blow up the estimate
	minWindowSec = 0.001

	metersPerInch = 0.0254
)

// State is the single shared record of the measurement pipeline. One
// mutex guards every field; the producer, the aggregator and the consumer
// each acquire it briefly and never hold it across a sleep.
type State struct {
	mu sync.Mutex

	running         bool
	eventsCount     int
	eventsPerSecond int
	deltaX          int32
	deltaY          int32
	maxSpeed        float64
	dpi             float64

	startTime         time.Time
	lastPollingUpdate time.Time

	eventHistory   eventHistory
	pollingHistory sampleHistory
	speedHistory   sampleHistory
}

// Snapshot is a refresh-consistent view handed to presentation sinks.
// Series are copies; readers never touch live state.
type Snapshot struct {
	Elapsed        float64  `json:"elapsed"`
	PollingRate    int      `json:"polling_rate"`
	DeltaX         int32    `json:"delta_x"`
	DeltaY         int32    `json:"delta_y"`
	Speed          float64  `json:"speed"`
	MaxSpeed       float64  `json:"max_speed"`
	DPI            float64  `json:"dpi"`
	WindowSeconds  float64  `json:"window_seconds"`
	SpeedHistory   []Sample `json:"speed_history"`
	PollingHistory []Sample `json:"polling_history"`
}

// NewState creates the measurement state with startTime = now.
// A non-positive dpi falls back to DefaultDPI.
func NewState(dpi float64) *State {
	return NewStateAt(dpi, time.Now())
}

// NewStateAt creates the measurement state with an explicit start instant
func NewStateAt(dpi float64, start time.Time) *State {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &State{
		running:           true,
		dpi:               dpi,
		startTime:         start,
		lastPollingUpdate: start,
	}
}

// Running reports whether the background loops should keep going
func (s *State) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Stop flips the lifecycle flag. Both background loops observe it at
// their next iteration and exit.
func (s *State) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// RecordMotion timestamps one raw event, appends it to the event history
// and advances the tick counter. Called by the ingestion loop per event.
func (s *State) RecordMotion(dx, dy int32, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	elapsed := now.Sub(s.startTime).Seconds()
	s.eventHistory.Append(EventRecord{Time: elapsed, DX: dx, DY: dy})
	s.deltaX, s.deltaY = dx, dy
	s.eventsCount++
}

// TickPollingRate converts the events accumulated since the last tick
// into an events-per-second figure. The counter resets every tick: the
// estimate is deliberately instantaneous, not a moving average.
// Returns the new rate and whether a tick elapsed.
func (s *State) TickPollingRate(now time.Time, tick time.Duration) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastPollingUpdate) < tick {
		return s.eventsPerSecond, false
	}

	elapsed := now.Sub(s.startTime).Seconds()
	rate := float64(s.eventsCount) * (1.0 / tick.Seconds())
	s.eventsPerSecond = int(math.Round(rate))
	s.pollingHistory.Append(Sample{Time: elapsed, Value: float64(s.eventsPerSecond)})
	s.eventsCount = 0
	s.lastPollingUpdate = now

	return s.eventsPerSecond, true
}

// Refresh runs the speed estimator and window manager under a single lock
// acquisition: prune all histories, recompute speed over the averaging
// window, update the running maximum and append the speed sample. The
// window text is owned by the presentation side and parsed here.
func (s *State) Refresh(now time.Time, windowText string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := now.Sub(s.startTime).Seconds()

	s.pollingHistory.PruneBefore(elapsed - plotRetentionSec)
	s.speedHistory.PruneBefore(elapsed - plotRetentionSec)

	windowSec := parseWindowSeconds(windowText)
	s.eventHistory.PruneBefore(elapsed - windowSec)

	var totalCounts float64
	for _, e := range s.eventHistory.events {
		dx, dy := float64(e.DX), float64(e.DY)
		totalCounts += math.Sqrt(dx*dx + dy*dy)
	}

	metersPerCount := metersPerInch / s.dpi
	speed := 0.0
	if s.eventHistory.Len() > 0 {
		speed = totalCounts * metersPerCount / windowSec
	}

	if speed > s.maxSpeed {
		s.maxSpeed = speed
	}

	s.speedHistory.Append(Sample{Time: elapsed, Value: speed})

	return Snapshot{
		Elapsed:        elapsed,
		PollingRate:    s.eventsPerSecond,
		DeltaX:         s.deltaX,
		DeltaY:         s.deltaY,
		Speed:          speed,
		MaxSpeed:       s.maxSpeed,
		DPI:            s.dpi,
		WindowSeconds:  windowSec,
		SpeedHistory:   s.speedHistory.Snapshot(),
		PollingHistory: s.pollingHistory.Snapshot(),
	}
}

// SetDPI applies user-entered resolution text. Malformed or non-positive
// values are rejected and the prior value retained.
func (s *State) SetDPI(text string) bool {
	dpi, err := strconv.ParseFloat(text, 64)
	if err != nil || dpi <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dpi = dpi
	return true
}

// DPI returns the configured device resolution
func (s *State) DPI() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dpi
}

// ResetMaxSpeed zeroes the running maximum on explicit user action
func (s *State) ResetMaxSpeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxSpeed = 0
}

// parseWindowSeconds converts user-entered milliseconds into the floored
// averaging window in seconds
func parseWindowSeconds(text string) float64 {
	ms, err := strconv.ParseFloat(text, 64)
	if err != nil || ms <= 0 {
		ms = DefaultWindowMS
	}

	sec := ms / 1000.0
	if sec < minWindowSec {
		sec = minWindowSec
	}

	return sec
}
