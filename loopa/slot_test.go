package loopa

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-loopa/loopa/dsp"
)

func newTestSlot() *slot {
	return &slot{
		buf:      make([]float32, 8000),
		playback: dsp.NewDelay(100, 0.4, 0.8),
	}
}

func TestSlotArmEmptyStartsCapture(t *testing.T) {
	s := newTestSlot()
	var ctl SlotControl
	ctl.Length.Store(4)
	ctl.Starting.Store(true)

	s.pos = 123
	s.onBoundary(1, &ctl)

	assert.True(t, s.capturing)
	assert.False(t, s.looping)
	assert.Equal(t, 0, s.pos)
	assert.Equal(t, uint32(4), s.lengthBeats)
	assert.Equal(t, uint32(1), s.recordStartBeat)
	assert.True(t, ctl.Recording.Load())
	assert.False(t, ctl.Playing.Load())
}

func TestSlotCaptureCompletesIntoLoop(t *testing.T) {
	s := newTestSlot()
	var ctl SlotControl
	ctl.Length.Store(4)
	ctl.Starting.Store(true)

	s.onBoundary(1, &ctl)
	s.pos = 4000
	s.onBoundary(5, &ctl)

	assert.True(t, s.filled)
	assert.True(t, s.looping)
	assert.False(t, s.capturing, "looping and capturing are mutually exclusive")
	assert.Equal(t, 0, s.pos, "playback restarts from the top of the loop")
	assert.True(t, ctl.Playing.Load())
	assert.False(t, ctl.Recording.Load())
}

func TestSlotArmFilledStartsPlayback(t *testing.T) {
	s := newTestSlot()
	s.filled = true
	var ctl SlotControl
	ctl.Length.Store(4)
	ctl.Starting.Store(true)

	s.onBoundary(9, &ctl)

	assert.True(t, s.looping)
	assert.False(t, s.capturing)
	assert.True(t, ctl.Playing.Load())
}

func TestSlotUnarmStopsPlayback(t *testing.T) {
	s := newTestSlot()
	s.filled = true
	s.looping = true
	var ctl SlotControl
	ctl.Length.Store(4)

	s.onBoundary(13, &ctl)

	assert.False(t, s.looping)
	assert.True(t, s.filled, "the recording survives a stop")
	assert.False(t, ctl.Playing.Load())
}

func TestSlotLengthSampledAtArming(t *testing.T) {
	s := newTestSlot()
	var ctl SlotControl
	ctl.Length.Store(4)
	ctl.Starting.Store(true)

	s.onBoundary(1, &ctl)
	// A later control edit must not shorten the take in progress.
	ctl.Length.Store(2)
	assert.Equal(t, uint32(4), s.lengthBeats)
}
