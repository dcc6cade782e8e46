package backend

import (
	"sync"
	"time"

	"github.com/valerio/go-loopa/loopa"
	"github.com/valerio/go-loopa/loopa/timing"
)

// Headless drives the engine from a synthetic block loop instead of an
// audio host, for batch runs and tests. Input blocks are silent unless a
// FillInput hook is provided.
type Headless struct {
	engine    *loopa.Engine
	blockSize int

	// FillInput, when set, populates the input block before each
	// Process call.
	FillInput func(block []float32)

	in  []float32
	out []float32

	limiter timing.Limiter
	stop    chan struct{}
	wg      sync.WaitGroup
}

var _ Backend = (*Headless)(nil)

// NewHeadless builds a headless driver around an existing engine.
func NewHeadless(engine *loopa.Engine, blockSize int) *Headless {
	return &Headless{
		engine:    engine,
		blockSize: blockSize,
		in:        make([]float32, blockSize),
		out:       make([]float32, blockSize),
	}
}

// RunBlocks synchronously processes n blocks. This is the test entry
// point: no goroutines, no pacing.
func (h *Headless) RunBlocks(n int) {
	for i := 0; i < n; i++ {
		h.runBlock()
	}
}

// LastOutput exposes the most recent output block, for inspection after
// RunBlocks.
func (h *Headless) LastOutput() []float32 {
	return h.out
}

func (h *Headless) runBlock() {
	if h.FillInput != nil {
		h.FillInput(h.in)
	} else {
		for i := range h.in {
			h.in[i] = 0
		}
	}
	h.engine.Process(h.in, h.out)
}

// Start launches a goroutine that processes blocks at real-time pace until
// Stop is called.
func (h *Headless) Start() error {
	blockDuration := time.Duration(h.blockSize) * time.Second / time.Duration(h.engine.SampleRate())
	h.limiter = timing.NewTickerLimiter(blockDuration)
	h.stop = make(chan struct{})
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.limiter.Stop()
		for {
			select {
			case <-h.stop:
				return
			default:
			}
			h.limiter.WaitForNextTick()
			h.runBlock()
		}
	}()
	return nil
}

// Stop halts the paced loop started by Start.
func (h *Headless) Stop() error {
	close(h.stop)
	h.wg.Wait()
	return nil
}
