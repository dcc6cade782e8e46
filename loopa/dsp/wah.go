package dsp

import "math"

// Wah is a state-variable band-pass filter whose center frequency is swept
// between minFreq and maxFreq by a low-frequency oscillator.
type Wah struct {
	sampleRate float32
	lfoPhase   float32
	lfoHz      float32
	minFreq    float32
	maxFreq    float32
	q          float32

	low  float32
	band float32
}

var _ Filter = (*Wah)(nil)

// NewWah builds a wah stage. lfoHz sets the sweep speed, minFreq/maxFreq
// bound the swept center frequency and q sets the resonance. Panics unless
// 0 < minFreq < maxFreq.
func NewWah(sampleRate, lfoHz, minFreq, maxFreq, q float32) *Wah {
	if minFreq <= 0 || maxFreq <= minFreq {
		panic("dsp: wah needs 0 < minFreq < maxFreq")
	}
	return &Wah{
		sampleRate: sampleRate,
		lfoHz:      lfoHz,
		minFreq:    minFreq,
		maxFreq:    maxFreq,
		q:          q,
	}
}

// Apply runs one sample through the filter and returns the band-pass
// component.
func (w *Wah) Apply(x float32) float32 {
	lfo := float32(math.Sin(float64(tau*w.lfoPhase)))*0.5 + 0.5
	w.lfoPhase += w.lfoHz / w.sampleRate
	if w.lfoPhase >= 1 {
		w.lfoPhase -= 1
	}

	fc := w.minFreq + lfo*(w.maxFreq-w.minFreq)
	f := 2 * float32(math.Sin(float64(math.Pi*fc/w.sampleRate)))

	high := x - w.low - w.q*w.band
	w.band += f * high
	w.low += f * w.band

	return w.band
}
