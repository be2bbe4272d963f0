package metrics

// historyCap is the hard ceiling on every history. The time-based
// retention horizon is the semantic bound; the capacity is a safety net.
const historyCap = 1000

// Sample is one point of a plotted time series
type Sample struct {
	Time  float64 `json:"t"` // seconds since measurement start
	Value float64 `json:"v"`
}

// EventRecord is one raw motion event held for speed estimation
type EventRecord struct {
	Time float64
	DX   int32
	DY   int32
}

// sampleHistory is a time-ordered series, appended at the back and pruned
// from the front. Bounded by historyCap and by PruneBefore.
type sampleHistory struct {
	samples []Sample
}

func (h *sampleHistory) Append(s Sample) {
	h.samples = append(h.samples, s)
	if len(h.samples) > historyCap {
		h.samples = h.samples[len(h.samples)-historyCap:]
	}
}

// PruneBefore drops leading samples older than the horizon.
// Pruning an already-pruned history is a no-op.
func (h *sampleHistory) PruneBefore(horizon float64) {
	i := 0
	for i < len(h.samples) && h.samples[i].Time < horizon {
		i++
	}
	if i > 0 {
		h.samples = h.samples[i:]
	}
}

func (h *sampleHistory) Len() int {
	return len(h.samples)
}

// Snapshot returns a copy safe to hand outside the state lock
func (h *sampleHistory) Snapshot() []Sample {
	out := make([]Sample, len(h.samples))
	copy(out, h.samples)
	return out
}

// eventHistory is the raw motion event series within the averaging window
type eventHistory struct {
	events []EventRecord
}

func (h *eventHistory) Append(e EventRecord) {
	h.events = append(h.events, e)
	if len(h.events) > historyCap {
		h.events = h.events[len(h.events)-historyCap:]
	}
}

func (h *eventHistory) PruneBefore(horizon float64) {
	i := 0
	for i < len(h.events) && h.events[i].Time < horizon {
		i++
	}
	if i > 0 {
		h.events = h.events[i:]
	}
}

func (h *eventHistory) Len() int {
	return len(h.events)
}
