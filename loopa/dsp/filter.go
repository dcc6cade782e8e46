// Package dsp holds the per-sample primitives used by the audio engine:
// envelope, oscillator and the monitoring/playback effects. Everything here
// is built once up front and then driven one sample at a time from the
// real-time callback, so no method on these types allocates or blocks.
package dsp

// Filter is the one-method contract shared by every per-sample effect.
// Apply consumes one input sample and produces one output sample in O(1).
type Filter interface {
	Apply(sample float32) float32
}
