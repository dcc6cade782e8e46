// Package loopa implements the real-time looper engine: the transport
// clock, the count-in state machine, the metronome, the bank of loop slots
// and the monitoring effect chain, all advanced one sample at a time from
// the host audio callback. The engine shares state with the UI, buttons
// and notifier exclusively through the Control plane in this file.
package loopa

import "sync/atomic"

// NumSlots is the number of independent loop channels.
const NumSlots = 8

// Tempo limits and default, all in milli-BPM (BPM x 1000).
const (
	MinMilliBPM     = 1_000
	MaxMilliBPM     = 3_000_000
	DefaultMilliBPM = 120_000
)

// DefaultLoopBeats is the initial per-slot loop length.
const DefaultLoopBeats = 4

// SlotControl is the shared state for one loop slot. Length and Starting
// are written by the control plane and read by the engine; Playing and
// Recording flow the other way. Layering is reserved: it is published by
// the UI but not consumed by the engine.
type SlotControl struct {
	Length    atomic.Uint32
	Starting  atomic.Bool
	Layering  atomic.Bool
	Playing   atomic.Bool
	Recording atomic.Bool
}

// Control is the lock-free surface between the audio callback and the
// non-real-time threads. The control plane writes Enabled, CountIn,
// CountInLength and MilliBPM; the engine writes CurrentMillibeat; the host
// backend writes XRuns. CountIn is the one shared scalar: the control plane
// sets it and the engine clears it when it consumes the request. All loads and
// stores are relaxed and advisory except the rolling-started event, which
// is guaranteed to arrive exactly once per completed count-in.
type Control struct {
	Enabled       atomic.Bool
	CountIn       atomic.Bool
	CountInLength atomic.Uint32
	MilliBPM      atomic.Uint32

	// CurrentMillibeat is beat*1000 + sub-beat, published every sample.
	CurrentMillibeat atomic.Uint32

	// XRuns counts over/underruns reported by the host callback. The
	// notifier turns changes into messages; the engine never reads it.
	XRuns atomic.Uint64

	Slots [NumSlots]SlotControl

	rollingStarted chan struct{}
	messages       chan string
}

// NewControl builds the control plane with tempo and loop defaults.
func NewControl() *Control {
	c := &Control{
		rollingStarted: make(chan struct{}, 4),
		messages:       make(chan string, 64),
	}
	c.MilliBPM.Store(DefaultMilliBPM)
	for i := range c.Slots {
		c.Slots[i].Length.Store(DefaultLoopBeats)
	}
	return c
}

// RollingStarted delivers one event each time a count-in completes.
func (c *Control) RollingStarted() <-chan struct{} {
	return c.rollingStarted
}

// Messages delivers human-readable host notifications.
func (c *Control) Messages() <-chan string {
	return c.messages
}

// PostMessage queues a notification string for the control plane, dropping
// it if the consumer has fallen behind. Never called from the audio thread.
func (c *Control) PostMessage(msg string) {
	select {
	case c.messages <- msg:
	default:
	}
}

// notifyRolling posts the count-in-completed event without blocking. The
// channel send is allocation-free, so this is the one piece of the control
// plane the audio callback is allowed to touch beyond the atomics.
func (c *Control) notifyRolling() {
	select {
	case c.rollingStarted <- struct{}{}:
	default:
	}
}
