package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWahSilenceInSilenceOut(t *testing.T) {
	wah := NewWah(48000, 2, 500, 3000, 0.8)
	for i := 0; i < 48000; i++ {
		assert.Equal(t, float32(0), wah.Apply(0))
	}
}

func TestWahStaysFinite(t *testing.T) {
	wah := NewWah(48000, 2, 500, 3000, 0.8)
	osc := NewOscillator(1000, 48000)
	for i := 0; i < 96000; i++ {
		out := wah.Apply(osc.Increment())
		if math.IsNaN(float64(out)) || math.IsInf(float64(out), 0) {
			t.Fatalf("non-finite output %v at sample %d", out, i)
		}
	}
}

func TestWahPassesMidBand(t *testing.T) {
	// A tone inside the sweep range should come through with real energy.
	wah := NewWah(48000, 2, 500, 3000, 0.8)
	osc := NewOscillator(1500, 48000)

	var energy float64
	for i := 0; i < 48000; i++ {
		out := wah.Apply(osc.Increment())
		energy += float64(out * out)
	}
	assert.Greater(t, energy, 100.0, "band-pass should pass a mid-band tone")
}

func TestWahInvalidRangePanics(t *testing.T) {
	assert.Panics(t, func() { NewWah(48000, 2, 0, 3000, 0.8) })
	assert.Panics(t, func() { NewWah(48000, 2, 3000, 500, 0.8) })
}
