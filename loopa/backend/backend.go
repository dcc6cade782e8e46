// Package backend connects the engine to an audio host. A backend owns the
// stream that drives Engine.Process and the notifier that turns host
// lifecycle events into control-plane messages.
package backend

// Backend drives the engine's callback from some audio source/sink.
// Backends are responsible for:
// - Opening the host stream (or synthetic block loop) at a fixed rate
// - Invoking Engine.Process with matching input and output blocks
// - Reporting stream lifecycle and host anomalies through the control
//   plane's messages queue (the PortAudio backend reports start, stop and
//   xruns; device changes are not reported)
type Backend interface {
	// Start opens the stream and begins invoking the engine callback.
	Start() error

	// Stop halts the stream and releases host resources.
	Stop() error
}
