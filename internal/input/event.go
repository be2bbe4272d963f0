package input

// Linux input event types and codes (from <linux/input-event-codes.h>)
const (
	evSyn = 0x00
	evRel = 0x02

	relX = 0x00
	relY = 0x01

	synReport = 0x00
)

// rawEvent mirrors the kernel input_event layout
// struct input_event { struct timeval time; __u16 type; __u16 code; __s32 value; };
type rawEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// Motion is one relative pointer displacement as delivered by the driver
type Motion struct {
	DX int32
	DY int32
}

// frameDecoder assembles raw events into complete motion frames.
// A frame is the set of EV_REL events delimited by an EV_SYN/SYN_REPORT;
// axes missing from a frame keep zero displacement.
type frameDecoder struct {
	dx, dy int32
	moved  bool
}

// feed consumes one raw event and reports a completed motion frame, if any.
func (d *frameDecoder) feed(ev rawEvent) (Motion, bool) {
	switch ev.Type {
	case evRel:
		switch ev.Code {
		case relX:
			d.dx += ev.Value
			d.moved = true
		case relY:
			d.dy += ev.Value
			d.moved = true
		}
	case evSyn:
		if ev.Code == synReport && d.moved {
			m := Motion{DX: d.dx, DY: d.dy}
			d.dx, d.dy = 0, 0
			d.moved = false
			return m, true
		}
		// SYN_REPORT without motion, or a dropped-buffer marker: start over
		d.dx, d.dy = 0, 0
		d.moved = false
	}

	return Motion{}, false
}
