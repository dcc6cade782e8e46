// Package hw holds the optional GPIO collaborators: the performance button
// matrix and the shift-register LED grid. Both are cooperative loops that
// poll with a short bounded sleep and exit on a one-shot stop signal; they
// never touch engine state directly, only the control plane and their own
// queues.
package hw

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// buttonOffsets are the GPIO line offsets of the 13 performance buttons,
// in button-index order. Indexes 9..12 double as pad triggers.
var buttonOffsets = []int{23, 22, 21, 3, 2, 0, 7, 27, 26, 15, 16, 5, 6}

// padButtonBase is the first button index that also emits a pad event.
const padButtonBase = 9

const buttonPollInterval = 100 * time.Microsecond

// Buttons polls a bank of pull-up GPIO lines and emits the index of each
// button on its high-to-low transition. Buttons at padButtonBase and above
// additionally emit a pad index on the Pads queue.
type Buttons struct {
	chip  string
	lines []*gpiocdev.Line
	last  []bool

	presses chan int
	pads    chan int

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewButtons prepares a poller on the named GPIO chip (e.g. "gpiochip0").
func NewButtons(chip string) *Buttons {
	return &Buttons{
		chip:    chip,
		last:    make([]bool, len(buttonOffsets)),
		presses: make(chan int, 16),
		pads:    make(chan int, 16),
	}
}

// Presses delivers the index of each pressed button.
func (b *Buttons) Presses() <-chan int {
	return b.presses
}

// Pads delivers the pad index for presses of the pad buttons.
func (b *Buttons) Pads() <-chan int {
	return b.pads
}

// Start requests the lines as pulled-up inputs and begins polling.
func (b *Buttons) Start() error {
	for _, offset := range buttonOffsets {
		line, err := gpiocdev.RequestLine(b.chip, offset,
			gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			b.closeLines()
			return fmt.Errorf("requesting button line %d: %w", offset, err)
		}
		b.lines = append(b.lines, line)
	}

	b.stop = make(chan struct{})
	b.wg.Add(1)
	go b.poll()
	return nil
}

func (b *Buttons) poll() {
	defer b.wg.Done()
	for {
		for i, line := range b.lines {
			v, err := line.Value()
			if err != nil {
				continue
			}
			if v == 0 && !b.last[i] {
				b.last[i] = true
				select {
				case b.presses <- i:
				default:
				}
				if i >= padButtonBase {
					select {
					case b.pads <- i - padButtonBase:
					default:
					}
				}
			} else if v != 0 {
				b.last[i] = false
			}
		}

		select {
		case <-b.stop:
			return
		default:
		}
		time.Sleep(buttonPollInterval)
	}
}

// Stop halts polling and releases the lines.
func (b *Buttons) Stop() {
	close(b.stop)
	b.wg.Wait()
	b.closeLines()
}

func (b *Buttons) closeLines() {
	for _, line := range b.lines {
		line.Close()
	}
	b.lines = nil
}
