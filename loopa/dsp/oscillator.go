package dsp

import "math"

const tau = 2 * math.Pi

// Oscillator is a phase-accumulating sine generator. Changing frequency
// keeps the current phase so retuning mid-stream does not click.
type Oscillator struct {
	freq          float32
	incrementTime float32
	phase         float32
	phaseInc      float32
}

// NewOscillator builds an oscillator at the given frequency in Hz.
func NewOscillator(freq float32, sampleRate int) Oscillator {
	incrementTime := 1 / float32(sampleRate)
	return Oscillator{
		freq:          freq,
		incrementTime: incrementTime,
		phaseInc:      tau * freq * incrementTime,
	}
}

// SetFreq retunes the oscillator without resetting its phase.
func (o *Oscillator) SetFreq(freq float32) {
	o.freq = freq
	o.phaseInc = tau * freq * o.incrementTime
}

// Increment advances the phase by one sample and returns the new level.
func (o *Oscillator) Increment() float32 {
	o.phase += o.phaseInc
	if o.phase >= tau {
		o.phase -= tau
	}
	return o.Level()
}

// Level returns the sine of the current phase.
func (o *Oscillator) Level() float32 {
	return float32(math.Sin(float64(o.phase)))
}
