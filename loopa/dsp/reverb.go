package dsp

// Reverb is a schroeder-style reverberator: a bank of parallel comb delays
// averaged together, fed through serial all-pass delays, scaled by an
// output gain. Both stages reuse the Delay primitive at full wet mix.
type Reverb struct {
	combs     []*Delay
	allpasses []*Delay
	gain      float32
}

var _ Filter = (*Reverb)(nil)

// NewReverb builds a reverb from comb and all-pass delay times in
// milliseconds with a shared feedback coefficient per stage.
func NewReverb(sampleRate int, combDelaysMs []int, combFeedback float32, allpassDelaysMs []int, allpassFeedback float32, gain float32) *Reverb {
	toSamples := func(ms int) int { return sampleRate * ms / 1000 }

	combs := make([]*Delay, len(combDelaysMs))
	for i, ms := range combDelaysMs {
		combs[i] = NewDelay(toSamples(ms), combFeedback, 1)
	}
	allpasses := make([]*Delay, len(allpassDelaysMs))
	for i, ms := range allpassDelaysMs {
		allpasses[i] = NewDelay(toSamples(ms), allpassFeedback, 1)
	}
	return &Reverb{combs: combs, allpasses: allpasses, gain: gain}
}

// Apply runs one sample through the comb bank and all-pass chain.
func (r *Reverb) Apply(in float32) float32 {
	var sum float32
	for _, comb := range r.combs {
		sum += comb.Apply(in)
	}
	out := sum / float32(len(r.combs))

	for _, ap := range r.allpasses {
		out = ap.Apply(out)
	}
	return out * r.gain
}
