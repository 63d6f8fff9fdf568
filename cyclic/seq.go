package cyclic

// seqAcceptWindow is the forward window of cycle counters accepted as a normal
// in-order step. Counters beyond the window are still accepted (packet loss
// opens arbitrary gaps); the window only classifies the step for accounting.
const seqAcceptWindow = 100

// SeqResult classifies an inbound cycle counter against the tracker state.
type SeqResult uint8

const (
	// SeqAccepted is a counter within the forward window.
	SeqAccepted SeqResult = iota
	// SeqGap is a counter outside the forward window, accepted anyway.
	SeqGap
	// SeqDuplicate is a counter equal to the last accepted one: a replay.
	SeqDuplicate
	// SeqInitial is the first counter seen on a fresh tracker.
	SeqInitial
)

// String returns string representation of the result.
func (r SeqResult) String() string {
	switch r {
	case SeqGap:
		return "gap"
	case SeqDuplicate:
		return "duplicate"
	case SeqInitial:
		return "initial"
	default:
		return "accepted"
	}
}

// SequenceTracker validates inbound 16-bit cycle counters for one channel.
// It exists solely for replay detection and is keyed per channel, never shared.
// A handshake reset of the channel clears it; it is not persisted across a
// reconnection of that channel.
type SequenceTracker struct {
	last        uint16
	initialized bool
}

// Check classifies seq and, unless it is a duplicate, records it as the new
// last-accepted counter. Wraparound is handled by 16-bit modular arithmetic:
// the forward distance from last to seq decides the window.
func (t *SequenceTracker) Check(seq uint16) SeqResult {
	if !t.initialized {
		t.initialized = true
		t.last = seq

		return SeqInitial
	}

	delta := seq - t.last // modular forward distance
	if delta == 0 {
		return SeqDuplicate
	}

	t.last = seq
	if delta <= seqAcceptWindow {
		return SeqAccepted
	}

	return SeqGap
}

// Last returns the last accepted counter and whether one was recorded.
func (t *SequenceTracker) Last() (uint16, bool) {
	return t.last, t.initialized
}

// Reset clears the tracker. Called when the channel's session is re-established;
// the first counter of the new stream initializes it again.
func (t *SequenceTracker) Reset() {
	t.last = 0
	t.initialized = false
}
