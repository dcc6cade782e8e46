package loopa

import "github.com/valerio/go-loopa/loopa/dsp"

// Monitoring and playback effect tuning.
const (
	monitorDelayMs        = 250
	monitorFeedback       = 0.4
	monitorWet            = 0.8
	monitorDrive          = 8.0
	monitorMix            = 0.5
	wahLFOHz              = 2.0
	wahMinFreq            = 500.0
	wahMaxFreq            = 3000.0
	wahQ                  = 0.8
	reverbCombFeedback    = 0.7
	reverbAllpassFeedback = 0.5
	reverbGain            = 0.7
)

var (
	reverbCombDelaysMs    = []int{30, 37, 41, 44}
	reverbAllpassDelaysMs = []int{5, 2}
)

// Config selects the engine's sample rate and the optional stages of the
// monitoring chain. Distortion and delay are always present; wah and
// reverb are appended when enabled.
type Config struct {
	SampleRate    int
	MonitorWah    bool
	MonitorReverb bool
}

// Engine is the audio callback core. All fields are owned by the callback
// thread; the only shared state is the Control plane. Process performs no
// allocation, takes no locks and does bounded work per frame.
type Engine struct {
	sampleRate int
	ctl        *Control

	audioClock     uint64
	lastEnabled    bool
	countinStarted bool
	countinLeft    uint32
	rolling        bool
	currentBeat    uint32
	lastBeatPos    float32

	click   metronome
	monitor []dsp.Filter
	capture dsp.Distortion
	slots   [NumSlots]slot
}

// New builds the engine and preallocates every buffer it will ever touch:
// slot capture buffers, the monitoring chain and the per-slot playback
// delays. Nothing is allocated after this point.
func New(ctl *Control, cfg Config) *Engine {
	sr := cfg.SampleRate
	if sr <= 0 {
		panic("loopa: engine sample rate must be positive")
	}

	delaySamples := sr * monitorDelayMs / 1000
	e := &Engine{
		sampleRate:  sr,
		ctl:         ctl,
		lastBeatPos: 0.999,
		click:       newMetronome(sr),
		capture:     dsp.NewDistortion(monitorDrive, monitorMix),
	}

	monitor := []dsp.Filter{
		e.capture,
		dsp.NewDelay(delaySamples, monitorFeedback, monitorWet),
	}
	if cfg.MonitorWah {
		monitor = append(monitor, dsp.NewWah(float32(sr), wahLFOHz, wahMinFreq, wahMaxFreq, wahQ))
	}
	if cfg.MonitorReverb {
		monitor = append(monitor, dsp.NewReverb(sr, reverbCombDelaysMs, reverbCombFeedback,
			reverbAllpassDelaysMs, reverbAllpassFeedback, reverbGain))
	}
	e.monitor = monitor

	for i := range e.slots {
		e.slots[i].buf = make([]float32, sr*maxLoopSeconds)
		e.slots[i].playback = dsp.NewDelay(delaySamples, monitorFeedback, monitorWet)
	}
	return e
}

// SampleRate returns the rate the engine was built for.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// Process is the per-block audio callback. in and out are the host's mono
// float32 buffers for this block and must be the same length.
func (e *Engine) Process(in, out []float32) {
	if !e.ctl.Enabled.Load() {
		for i := range out {
			out[i] = 0
		}
		e.lastEnabled = false
		return
	}

	if !e.lastEnabled {
		// Freshly enabled: restart the transport and the click.
		e.audioClock = 0
		e.click.osc.SetFreq(clickFreqLow)
	}
	e.lastEnabled = true

	mbpm := e.ctl.MilliBPM.Load()
	if mbpm == 0 {
		mbpm = MinMilliBPM
	}
	samplesPerBeat := uint64(e.sampleRate) * 60_000 / uint64(mbpm)
	if samplesPerBeat == 0 {
		samplesPerBeat = 1
	}

	countinReq := e.ctl.CountIn.Load()
	dt := 1 / float32(e.sampleRate)

	for i := range out {
		inSample := in[i]
		beatPos := float32(e.audioClock%samplesPerBeat) / float32(samplesPerBeat)
		subBeat := uint32(beatPos * 1000)

		// Live monitoring forms the base of the output sample.
		monitored := inSample
		for _, f := range e.monitor {
			monitored = f.Apply(monitored)
		}
		out[i] = monitored

		if beatPos < e.lastBeatPos {
			countinReq = e.onBeatCrossing(countinReq)
		}
		e.lastBeatPos = beatPos

		e.ctl.CurrentMillibeat.Store(e.currentBeat*1000 + subBeat)

		out[i] += e.click.sample(dt, beatPos)

		for j := range e.slots {
			s := &e.slots[j]
			if s.pos >= len(s.buf) {
				// Loops longer than the buffer wrap rather than run off
				// the end. The boundary table resets pos before this only
				// while the slot's snapped period fits in maxLoopSeconds.
				s.pos = 0
			}
			if s.looping {
				out[i] += s.playback.Apply(s.buf[s.pos])
			}
			if s.capturing {
				s.buf[s.pos] = e.capture.Apply(inSample)
			}
			if s.looping || s.capturing {
				s.pos++
			}
		}

		e.audioClock++
	}
}

// onBeatCrossing runs once per beat boundary: it starts a requested
// count-in, advances the beat counter, retriggers the click for the
// current transport phase and schedules every slot whose boundary rule
// fires on this beat. Returns the possibly-consumed count-in request.
func (e *Engine) onBeatCrossing(countinReq bool) bool {
	if !e.countinStarted && countinReq {
		e.audioClock = 0
		e.currentBeat = 0
		e.ctl.CurrentMillibeat.Store(1000)
		e.countinLeft = e.ctl.CountInLength.Load()
		e.countinStarted = true
		e.ctl.CountIn.Store(false)
		countinReq = false
	}

	e.currentBeat++

	freq := float32(clickFreqIdle)
	if e.countinStarted {
		if e.countinLeft == 0 {
			e.countinStarted = false
			e.ctl.notifyRolling()
			e.rolling = true
			e.currentBeat = 1
			freq = clickFreqHigh
		} else {
			e.countinLeft--
			if e.countinLeft%4 == 3 {
				freq = clickFreqHigh
			} else {
				freq = clickFreqLow
			}
		}
	} else if e.rolling {
		if e.currentBeat%4 == 1 {
			freq = clickFreqHigh
		} else {
			freq = clickFreqLow
		}
	}

	vol := float32(clickVolIdle)
	if e.rolling {
		vol = clickVolRolling
	} else if e.countinStarted {
		vol = clickVolCountIn
	}
	e.click.retrigger(freq, vol)

	if e.rolling {
		for j := range e.slots {
			ctl := &e.ctl.Slots[j]
			if !boundaryHits(ctl.Length.Load(), e.currentBeat) {
				continue
			}
			e.slots[j].onBoundary(e.currentBeat, ctl)
		}
	}
	return countinReq
}
