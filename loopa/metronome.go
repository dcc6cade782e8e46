package loopa

import "github.com/valerio/go-loopa/loopa/dsp"

// Click frequencies: high C for emphasized beats, the octave below for the
// rest, and an A while idling outside count-in and rolling.
const (
	clickFreqHigh = 523.25
	clickFreqLow  = clickFreqHigh / 2
	clickFreqIdle = 440.0
)

// Click volume per transport phase.
const (
	clickVolRolling = 0.05
	clickVolCountIn = 0.4
	clickVolIdle    = 0.2
)

// Envelope shape of a single click, in seconds.
const (
	clickAttack  = 0.01
	clickDecay   = 0.1
	clickSustain = 0.2
	clickRelease = 0.02
)

// releaseBeatPos is how far into a beat the click envelope is released.
const releaseBeatPos = 0.25

// metronome is the beat click: a sine retriggered through an ADSR on every
// beat crossing, with frequency and volume chosen by the transport phase.
type metronome struct {
	osc dsp.Oscillator
	env *dsp.ADSR
	vol float32
}

func newMetronome(sampleRate int) metronome {
	return metronome{
		osc: dsp.NewOscillator(clickFreqLow, sampleRate),
		env: dsp.NewADSR(clickAttack, clickDecay, clickSustain, clickRelease),
		vol: clickVolIdle,
	}
}

// retrigger restarts the click at a new frequency and volume. Called once
// per beat crossing, before the crossing sample is synthesized.
func (m *metronome) retrigger(freq, vol float32) {
	m.env.Reset()
	m.osc.SetFreq(freq)
	m.vol = vol
}

// sample advances the click by one sample and returns its contribution to
// the output. The envelope is released a quarter of the way into the beat.
func (m *metronome) sample(dt, beatPos float32) float32 {
	if beatPos > releaseBeatPos {
		m.env.Release()
	}
	level := m.env.Advance(dt)
	return level * m.osc.Increment() * m.vol
}
