package backend

import (
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/valerio/go-loopa/loopa"
)

const xrunPollInterval = 100 * time.Millisecond

// PortAudio runs the engine as a client of the system audio host: one mono
// float32 input and one mono float32 output on the default devices. The
// host invokes the callback on its own high-priority thread; everything
// the callback touches is set up before Start returns.
type PortAudio struct {
	ctl    *loopa.Control
	cfg    loopa.Config
	engine *loopa.Engine

	stream *portaudio.Stream
	stop   chan struct{}
	wg     sync.WaitGroup
}

var _ Backend = (*PortAudio)(nil)

// NewPortAudio prepares a host backend. If cfg.SampleRate is zero the
// output device's default rate is used when the stream opens.
func NewPortAudio(ctl *loopa.Control, cfg loopa.Config) *PortAudio {
	return &PortAudio{ctl: ctl, cfg: cfg}
}

// Engine returns the engine owned by this backend. Only valid after Start.
func (p *PortAudio) Engine() *loopa.Engine {
	return p.engine
}

// Start initializes the host, picks the default duplex devices, builds the
// engine at the stream rate and starts the callback. The default input
// stands in for the first physical source, the default output for the
// sink set.
func (p *PortAudio) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing audio host: %w", err)
	}

	inDev, err := portaudio.DefaultInputDevice()
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("no default input device: %w", err)
	}
	outDev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("no default output device: %w", err)
	}

	if p.cfg.SampleRate == 0 {
		p.cfg.SampleRate = int(outDev.DefaultSampleRate)
	}
	p.engine = loopa.New(p.ctl, p.cfg)

	params := portaudio.LowLatencyParameters(inDev, outDev)
	params.Input.Channels = 1
	params.Output.Channels = 1
	params.SampleRate = float64(p.cfg.SampleRate)

	stream, err := portaudio.OpenStream(params, p.callback)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening duplex stream: %w", err)
	}
	p.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting stream: %w", err)
	}

	p.stop = make(chan struct{})
	p.wg.Add(1)
	go p.watch()

	p.ctl.PostMessage(fmt.Sprintf("audio: stream started at %d Hz (%s -> %s)",
		p.cfg.SampleRate, inDev.Name, outDev.Name))
	return nil
}

// callback is invoked by the host for each block. It stays free of
// allocation and blocking: anomalies only bump an atomic counter that the
// watcher goroutine turns into messages.
func (p *PortAudio) callback(in, out []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
	const anyXRun = portaudio.InputUnderflow | portaudio.InputOverflow |
		portaudio.OutputUnderflow | portaudio.OutputOverflow
	if flags&anyXRun != 0 {
		p.ctl.XRuns.Add(1)
	}
	p.engine.Process(in, out)
}

// watch forwards xrun counter changes to the messages queue. It is the
// notifier half of the host contract; the callback itself never formats
// strings.
func (p *PortAudio) watch() {
	defer p.wg.Done()
	var seen uint64
	ticker := time.NewTicker(xrunPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			if n := p.ctl.XRuns.Load(); n != seen {
				seen = n
				p.ctl.PostMessage(fmt.Sprintf("audio: xrun occurred (%d total)", n))
			}
		}
	}
}

// Stop halts the stream and tears down the host. Safe to call once after a
// successful Start.
func (p *PortAudio) Stop() error {
	close(p.stop)
	p.wg.Wait()

	err := p.stream.Stop()
	if cerr := p.stream.Close(); err == nil {
		err = cerr
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	p.ctl.PostMessage("audio: stream stopped")
	if err != nil {
		return fmt.Errorf("stopping stream: %w", err)
	}
	return nil
}
