package loopa

import "github.com/valerio/go-loopa/loopa/dsp"

// maxLoopSeconds sizes each slot's capture buffer: twice the length of a
// 33-beat loop at 60 BPM. A 33-beat loop fits only at 30 BPM or faster;
// slower loops outrun the buffer and wrap (see Engine.Process).
const maxLoopSeconds = 2 * 33

// slot is one loop channel. The buffer is allocated once at engine
// construction and only ever re-armed; looping and capturing are mutually
// exclusive and pos stays inside the buffer whenever either is set.
type slot struct {
	buf       []float32
	filled    bool
	looping   bool
	capturing bool
	pos       int

	// lengthBeats is sampled from the control plane when the slot arms,
	// so a mid-capture tempo-page edit cannot shorten a take.
	lengthBeats     uint32
	recordStartBeat uint32

	playback *dsp.Delay
}

// boundaryHits reports whether beat is a scheduling boundary for a loop of
// the given length. Lengths up to 32 snap to the next power-of-two grid so
// that loops of different sizes stay phase-aligned; longer lengths fire only
// on beat 1, and length 0 disables the slot.
func boundaryHits(length, beat uint32) bool {
	switch {
	case length == 0:
		return false
	case length == 1:
		return true
	case length == 2:
		return beat%2 == 1
	case length <= 4:
		return beat%4 == 1
	case length <= 8:
		return beat%8 == 1
	case length <= 16:
		return beat%16 == 1
	case length <= 32:
		return beat%32 == 1
	default:
		return beat == 1
	}
}

// onBoundary applies the record/loop/idle transitions at one of the slot's
// scheduling boundaries and publishes the resulting state.
func (s *slot) onBoundary(beat uint32, ctl *SlotControl) {
	if s.capturing && beat-s.recordStartBeat >= s.lengthBeats {
		// Take complete: flip straight into playback.
		s.filled = true
		s.capturing = false
		s.looping = true
		ctl.Recording.Store(false)
	}

	if ctl.Starting.Load() {
		if s.filled {
			s.looping = true
		} else {
			s.capturing = true
			s.lengthBeats = ctl.Length.Load()
			s.recordStartBeat = beat
			s.pos = 0
			ctl.Recording.Store(true)
		}
	} else if s.filled {
		s.looping = false
	}

	if s.looping {
		s.pos = 0
		ctl.Playing.Store(true)
	} else {
		ctl.Playing.Store(false)
	}
}
