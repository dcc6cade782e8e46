package hw

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/valerio/go-loopa/loopa"
)

// Shift-register line offsets: serial data, storage latch and shift clock
// of two cascaded 8-bit registers driving an 8x8 LED matrix.
const (
	ledDataOffset  = 15
	ledLatchOffset = 16
	ledClockOffset = 27
)

const ledRowInterval = 100 * time.Microsecond

// digitImages are 8x8 bitmaps of the digits 0..9, one byte per row. The
// display cycles through them indexed by the whole beat count.
var digitImages = [10]uint64{
	0x3c66666e76663c00,
	0x7e1818181c181800,
	0x7e060c3060663c00,
	0x3c66603860663c00,
	0x30307e3234383000,
	0x3c6660603e067e00,
	0x3c66663e06663c00,
	0x1818183030667e00,
	0x3c66663c66663c00,
	0x3c66607c66663c00,
}

type bitOrder int

const (
	lsbFirst bitOrder = iota
	msbFirst
)

// LEDGrid renders the current beat digit onto a shift-register LED matrix.
// One register selects the active row (active low), the other carries the
// row's pixel byte; rows are strobed continuously with a short latch
// interval.
type LEDGrid struct {
	chip string
	ctl  *loopa.Control

	data  *gpiocdev.Line
	latch *gpiocdev.Line
	clock *gpiocdev.Line

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewLEDGrid prepares a renderer on the named GPIO chip.
func NewLEDGrid(chip string, ctl *loopa.Control) *LEDGrid {
	return &LEDGrid{chip: chip, ctl: ctl}
}

// Start requests the register lines and begins strobing the display.
func (g *LEDGrid) Start() error {
	var err error
	if g.data, err = gpiocdev.RequestLine(g.chip, ledDataOffset, gpiocdev.AsOutput(0)); err != nil {
		return fmt.Errorf("requesting data line: %w", err)
	}
	if g.latch, err = gpiocdev.RequestLine(g.chip, ledLatchOffset, gpiocdev.AsOutput(0)); err != nil {
		g.closeLines()
		return fmt.Errorf("requesting latch line: %w", err)
	}
	if g.clock, err = gpiocdev.RequestLine(g.chip, ledClockOffset, gpiocdev.AsOutput(0)); err != nil {
		g.closeLines()
		return fmt.Errorf("requesting clock line: %w", err)
	}

	g.blank()

	g.stop = make(chan struct{})
	g.wg.Add(1)
	go g.run()
	return nil
}

func (g *LEDGrid) run() {
	defer g.wg.Done()

	var lastBeat uint32
	image := 0
	for {
		g.displayImage(digitImages[image])

		beat := g.ctl.CurrentMillibeat.Load() / 1000
		if beat != lastBeat {
			image = int(beat) % len(digitImages)
			lastBeat = beat
		}

		select {
		case <-g.stop:
			g.blank()
			return
		default:
		}
	}
}

// displayImage strobes the eight rows of one bitmap through the cascaded
// registers: row mask first (active low), then the row byte.
func (g *LEDGrid) displayImage(image uint64) {
	for row := 0; row < 8; row++ {
		g.latch.SetValue(0)
		mask := byte(1 << row)
		pixels := byte(image >> (row * 8))
		g.shiftOut(lsbFirst, ^mask)
		g.shiftOut(msbFirst, pixels)
		time.Sleep(ledRowInterval)
		g.latch.SetValue(1)
	}
}

func (g *LEDGrid) shiftOut(order bitOrder, data byte) {
	for i := 0; i < 8; i++ {
		bit := byte(1 << i)
		if order == msbFirst {
			bit = byte(1 << (7 - i))
		}
		if data&bit != 0 {
			g.data.SetValue(1)
		} else {
			g.data.SetValue(0)
		}
		g.clock.SetValue(1)
		g.clock.SetValue(0)
	}
}

// blank clears both registers so no LED is left lit.
func (g *LEDGrid) blank() {
	g.latch.SetValue(0)
	g.shiftOut(lsbFirst, 0xff)
	g.shiftOut(lsbFirst, 0x00)
	g.latch.SetValue(1)
	g.latch.SetValue(0)
}

// Stop halts the strobe loop, blanks the display and releases the lines.
func (g *LEDGrid) Stop() {
	close(g.stop)
	g.wg.Wait()
	g.closeLines()
}

func (g *LEDGrid) closeLines() {
	for _, line := range []*gpiocdev.Line{g.data, g.latch, g.clock} {
		if line != nil {
			line.Close()
		}
	}
	g.data, g.latch, g.clock = nil, nil, nil
}
