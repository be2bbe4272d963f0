package input

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameDecoderAssemblesMotion(t *testing.T) {
	var d frameDecoder

	_, ok := d.feed(rawEvent{Type: evRel, Code: relX, Value: 3})
	assert.False(t, ok, "motion must not complete before SYN_REPORT")

	_, ok = d.feed(rawEvent{Type: evRel, Code: relY, Value: -2})
	assert.False(t, ok)

	m, ok := d.feed(rawEvent{Type: evSyn, Code: synReport})
	require.True(t, ok)
	assert.Equal(t, int32(3), m.DX)
	assert.Equal(t, int32(-2), m.DY)
}

func TestFrameDecoderSingleAxis(t *testing.T) {
	var d frameDecoder

	d.feed(rawEvent{Type: evRel, Code: relX, Value: 7})
	m, ok := d.feed(rawEvent{Type: evSyn, Code: synReport})
	require.True(t, ok)
	assert.Equal(t, int32(7), m.DX)
	assert.Equal(t, int32(0), m.DY, "missing axis keeps zero displacement")
}

func TestFrameDecoderIgnoresNonMotionFrames(t *testing.T) {
	var d frameDecoder

	// Wheel scroll and key frames carry no REL_X/REL_Y
	d.feed(rawEvent{Type: evRel, Code: 0x08, Value: 1}) // REL_WHEEL
	_, ok := d.feed(rawEvent{Type: evSyn, Code: synReport})
	assert.False(t, ok, "frames without X/Y motion must be dropped")

	d.feed(rawEvent{Type: 0x01, Code: 272, Value: 1}) // EV_KEY BTN_LEFT
	_, ok = d.feed(rawEvent{Type: evSyn, Code: synReport})
	assert.False(t, ok)
}

func TestFrameDecoderResetsBetweenFrames(t *testing.T) {
	var d frameDecoder

	d.feed(rawEvent{Type: evRel, Code: relX, Value: 5})
	m, ok := d.feed(rawEvent{Type: evSyn, Code: synReport})
	require.True(t, ok)
	assert.Equal(t, int32(5), m.DX)

	d.feed(rawEvent{Type: evRel, Code: relX, Value: 1})
	m, ok = d.feed(rawEvent{Type: evSyn, Code: synReport})
	require.True(t, ok)
	assert.Equal(t, int32(1), m.DX, "displacement must not carry over between frames")
}

func TestFrameDecoderAccumulatesWithinFrame(t *testing.T) {
	var d frameDecoder

	d.feed(rawEvent{Type: evRel, Code: relX, Value: 2})
	d.feed(rawEvent{Type: evRel, Code: relX, Value: 4})
	m, ok := d.feed(rawEvent{Type: evSyn, Code: synReport})
	require.True(t, ok)
	assert.Equal(t, int32(6), m.DX, "repeated axis events within a frame accumulate")
}

func TestScanDevicesFindsMouseHandler(t *testing.T) {
	listing := `I: Bus=0011 Vendor=0001 Product=0001 Version=ab41
N: Name="AT Translated Set 2 keyboard"
H: Handlers=sysrq kbd event0 leds
B: EV=120013

I: Bus=0003 Vendor=046d Product=c08b Version=0111
N: Name="Logitech G502"
H: Handlers=mouse0 event3
B: EV=17
`
	node, err := scanDevices(strings.NewReader(listing))
	require.NoError(t, err)
	assert.Equal(t, "event3", node)
}

func TestScanDevicesNoMouse(t *testing.T) {
	listing := `I: Bus=0011 Vendor=0001 Product=0001 Version=ab41
N: Name="AT Translated Set 2 keyboard"
H: Handlers=sysrq kbd event0 leds
`
	_, err := scanDevices(strings.NewReader(listing))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input_no_pointing_device")
}
