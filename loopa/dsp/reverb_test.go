package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testReverb(gain float32) *Reverb {
	return NewReverb(48000, []int{30, 37, 41, 44}, 0.7, []int{5, 2}, 0.5, gain)
}

func TestReverbSilenceInSilenceOut(t *testing.T) {
	rev := testReverb(0.7)
	for i := 0; i < 48000; i++ {
		assert.Equal(t, float32(0), rev.Apply(0))
	}
}

func TestReverbImpulseResponseDecays(t *testing.T) {
	rev := testReverb(0.7)

	// Drive an impulse and collect a second of tail.
	first := rev.Apply(1)
	assert.NotZero(t, first, "combs at full wet pass the dry impulse immediately")

	var early, late float64
	for i := 0; i < 48000; i++ {
		out := float64(rev.Apply(0))
		if i < 4800 {
			early += out * out
		} else if i >= 43200 {
			late += out * out
		}
	}
	assert.Greater(t, early, 0.0, "the comb bank should produce echoes")
	assert.Less(t, late, early, "the tail should decay with comb feedback below 1")
}

func TestReverbZeroGainSilences(t *testing.T) {
	rev := testReverb(0)
	rev.Apply(1)
	for i := 0; i < 10000; i++ {
		assert.Equal(t, float32(0), rev.Apply(0))
	}
}
