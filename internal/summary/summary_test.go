package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRateDistribution(t *testing.T) {
	s := New()

	for i := 0; i < 90; i++ {
		s.ObserveRate(1000)
	}
	for i := 0; i < 10; i++ {
		s.ObserveRate(8000)
	}

	stats := s.Stats()
	require.Equal(t, int64(100), stats.RateSamples)
	assert.InDelta(t, 1000, stats.RateP50, 2)
	assert.InDelta(t, 8000, stats.RateMax, 8, "hdr buckets keep 3 significant figures")
}

func TestZeroObservationsIgnored(t *testing.T) {
	s := New()

	s.ObserveRate(0)
	s.ObserveRate(-5)
	s.ObserveSpeed(0)
	s.ObserveSpeed(0.0001) // below 1 mm/s resolution

	stats := s.Stats()
	assert.Zero(t, stats.RateSamples)
	assert.Zero(t, stats.SpeedSamples)
}

func TestObserveSpeedConvertsToMillimeters(t *testing.T) {
	s := New()

	s.ObserveSpeed(0.5) // 500 mm/s

	stats := s.Stats()
	require.Equal(t, int64(1), stats.SpeedSamples)
	assert.InDelta(t, 500, stats.SpeedMax, 1)
}
