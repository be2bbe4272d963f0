package monitor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeterClampsFraction(t *testing.T) {
	full := meter(2.0, 10)
	assert.Equal(t, 10, strings.Count(full, "|"), "overscale input pegs the bar")

	empty := meter(-0.5, 10)
	assert.Equal(t, 0, strings.Count(empty, "|"))
}

func TestMeterWidth(t *testing.T) {
	bar := meter(0.5, 10)
	assert.Equal(t, 5, strings.Count(bar, "|"))
	assert.Contains(t, bar, "[")
	assert.Contains(t, bar, "]")
}
