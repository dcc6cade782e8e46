package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestADSRShape(t *testing.T) {
	adsr := NewADSR(0.01, 0.1, 0.8, 0.1)
	assert.Equal(t, float32(0), adsr.Level())

	// Two seconds at 48kHz lands deep in the sustain phase.
	const dt = 1.0 / 48000
	for i := 0; i < 100000; i++ {
		level := adsr.Advance(dt)
		assert.GreaterOrEqual(t, level, float32(0))
		assert.LessOrEqual(t, level, float32(1))
	}
	assert.Equal(t, float32(0.8), adsr.Level())

	// After release the level never exceeds the sustain level and
	// eventually reaches zero.
	adsr.Release()
	for i := 0; i < 100000; i++ {
		level := adsr.Advance(dt)
		assert.GreaterOrEqual(t, level, float32(0))
		assert.LessOrEqual(t, level, float32(0.8))
	}
	assert.Equal(t, float32(0), adsr.Level())
}

func TestADSRReset(t *testing.T) {
	adsr := NewADSR(0.01, 0.1, 0.8, 0.1)
	for i := 0; i < 1000; i++ {
		adsr.Advance(0.001)
	}
	adsr.Reset()
	assert.Equal(t, float32(0), adsr.Level())

	// Mid-attack the ramp is linear from zero.
	level := adsr.Advance(0.005)
	assert.InDelta(t, 0.5, level, 1e-5)
}

func TestADSRReleaseOnlyFromSustain(t *testing.T) {
	adsr := NewADSR(0.1, 0.1, 0.8, 0.1)

	// Release during attack is a no-op.
	adsr.Advance(0.05)
	adsr.Release()
	level := adsr.Advance(0.01)
	assert.Greater(t, level, float32(0.5), "attack should still be ramping up")
}

func TestADSRZeroRelease(t *testing.T) {
	adsr := NewADSR(0.01, 0.01, 0.5, 0)
	adsr.Advance(1) // straight to sustain
	assert.Equal(t, float32(0.5), adsr.Level())

	adsr.Release()
	assert.Equal(t, float32(0), adsr.Level())
	assert.Equal(t, float32(0), adsr.Advance(0.01))
}

func TestADSROvershootCarries(t *testing.T) {
	adsr := NewADSR(0.01, 0.1, 0.8, 0.1)

	// One step twice the attack length must land inside decay, not at the
	// attack peak.
	level := adsr.Advance(0.02)
	assert.Less(t, level, float32(1))
	assert.Greater(t, level, float32(0.8))
	assert.InDelta(t, 1-0.01*(1-0.8)/0.1, level, 1e-5)
}

func TestADSRLevelBoundsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		attack := rapid.Float32Range(0.0001, 1).Draw(t, "attack")
		decay := rapid.Float32Range(0.0001, 1).Draw(t, "decay")
		sustain := rapid.Float32Range(0, 1).Draw(t, "sustain")
		release := rapid.Float32Range(0.0001, 1).Draw(t, "release")
		dt := rapid.Float32Range(0.00001, 0.01).Draw(t, "dt")
		steps := rapid.IntRange(1, 5000).Draw(t, "steps")
		releaseAfter := rapid.IntRange(0, 5000).Draw(t, "releaseAfter")

		adsr := NewADSR(attack, decay, sustain, release)
		for i := 0; i < steps; i++ {
			if i == releaseAfter {
				adsr.Release()
			}
			level := adsr.Advance(dt)
			if level < 0 || level > 1 {
				t.Fatalf("level %v out of [0,1] at step %d", level, i)
			}
		}
	})
}
