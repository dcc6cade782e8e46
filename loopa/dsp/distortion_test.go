package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestDistortionZeroMixIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		drive := rapid.Float32Range(1, 50).Draw(t, "drive")
		x := rapid.Float32Range(-100, 100).Draw(t, "x")

		dist := NewDistortion(drive, 0)
		if got := dist.Apply(x); got != x {
			t.Fatalf("Apply(%v) = %v, want identity", x, got)
		}
	})
}

func TestDistortionFullMixIsBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		drive := rapid.Float32Range(1, 50).Draw(t, "drive")
		x := rapid.Float32Range(-1e6, 1e6).Draw(t, "x")

		dist := NewDistortion(drive, 1)
		out := dist.Apply(x)
		if out < -1 || out > 1 {
			t.Fatalf("Apply(%v) = %v, outside [-1, 1]", x, out)
		}
	})
}

func TestDistortionSoftClipShape(t *testing.T) {
	dist := NewDistortion(2, 1)

	// Small signals get the tanh curve, large ones the hard rails.
	assert.InDelta(t, 0.197, dist.Apply(0.1), 0.01)
	assert.Equal(t, float32(1), dist.Apply(10))
	assert.Equal(t, float32(-1), dist.Apply(-10))
}

func TestDistortionInvalidParamsPanic(t *testing.T) {
	assert.Panics(t, func() { NewDistortion(0.5, 0.5) })
	assert.Panics(t, func() { NewDistortion(2, -0.1) })
	assert.Panics(t, func() { NewDistortion(2, 1.1) })
}
