// Package tui is the terminal front end: a four-phase state machine
// (Setup, Prepare, CountIn, Rolling) that publishes performer intent to
// the control plane and renders the transport position coming back.
package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-loopa/loopa"
	"github.com/valerio/go-loopa/loopa/timing"
)

const refreshInterval = time.Second / 30

type phase int

const (
	phaseSetup phase = iota
	phasePrepare
	phaseCountIn
	phaseRolling
)

func (p phase) String() string {
	switch p {
	case phaseSetup:
		return "setup"
	case phasePrepare:
		return "prepare"
	case phaseCountIn:
		return "count-in"
	case phaseRolling:
		return "rolling"
	}
	return "unknown"
}

// slotEdit is the UI-side draft of one slot's configuration, published to
// the control plane when the performer commits the prepare phase.
type slotEdit struct {
	lengthBeats uint32
	starting    bool
	layering    bool
}

// UI owns the terminal screen and drives the phase machine.
type UI struct {
	screen tcell.Screen
	ctl    *loopa.Control

	phase     phase
	mbpm      uint32
	precision uint32
	countIn   uint32
	selected  int
	slots     [loopa.NumSlots]slotEdit

	msgs    *MessageLog
	events  chan tcell.Event
	running bool
}

// New initializes the terminal and builds the UI in its setup phase.
func New(ctl *loopa.Control) (*UI, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	u := &UI{
		screen:    screen,
		ctl:       ctl,
		mbpm:      ctl.MilliBPM.Load(),
		precision: 10000,
		countIn:   4,
		msgs:      NewMessageLog(100),
		events:    make(chan tcell.Event, 16),
		running:   true,
	}
	for i := range u.slots {
		u.slots[i].lengthBeats = loopa.DefaultLoopBeats
	}
	return u, nil
}

// Run drives the UI until the performer quits. The engine is disabled on
// the way out.
func (u *UI) Run() error {
	defer func() {
		u.ctl.Enabled.Store(false)
		u.screen.Fini()
	}()

	u.screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorBlack).
		Foreground(tcell.ColorWhite))
	u.screen.Clear()

	go u.pollEvents()

	limiter := timing.NewTickerLimiter(refreshInterval)
	defer limiter.Stop()

	for u.running {
		u.drainControl()
		u.draw()
		u.screen.Show()

		limiter.WaitForNextTick()
		u.handlePendingEvents()
	}
	return nil
}

func (u *UI) pollEvents() {
	for {
		ev := u.screen.PollEvent()
		if ev == nil {
			return
		}
		u.events <- ev
	}
}

func (u *UI) handlePendingEvents() {
	for {
		select {
		case ev := <-u.events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				u.handleKey(ev)
			case *tcell.EventResize:
				u.screen.Sync()
			}
		default:
			return
		}
	}
}

// drainControl consumes the engine-to-UI queues: host messages always, the
// rolling event only while counting in (it is the phase transition).
func (u *UI) drainControl() {
drain:
	for {
		select {
		case msg := <-u.ctl.Messages():
			u.msgs.Add(msg)
		default:
			break drain
		}
	}
	if u.phase == phaseCountIn {
		select {
		case <-u.ctl.RollingStarted():
			u.phase = phaseRolling
		default:
		}
	}
}

func (u *UI) handleKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyRune && ev.Rune() == 'q' || ev.Key() == tcell.KeyEscape {
		u.running = false
		return
	}

	switch u.phase {
	case phaseSetup:
		u.handleSetupKey(ev)
	case phasePrepare:
		u.handlePrepareKey(ev)
	case phaseCountIn:
		// Nothing to adjust; the rolling event moves us on.
	case phaseRolling:
		u.handleRollingKey(ev)
	}
}

func (u *UI) handleSetupKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyLeft:
		if u.mbpm > loopa.MinMilliBPM+u.precision {
			u.mbpm -= u.precision
		} else {
			u.mbpm = loopa.MinMilliBPM
		}
	case tcell.KeyRight:
		u.mbpm += u.precision
		if u.mbpm > loopa.MaxMilliBPM {
			u.mbpm = loopa.MaxMilliBPM
		}
	case tcell.KeyTab:
		switch u.precision {
		case 10000:
			u.precision = 1000
		case 1000:
			u.precision = 100
		case 100:
			u.precision = 10
		default:
			u.precision = 10000
		}
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			// Commit the tempo and let the engine idle-click while the
			// performer arranges the loops.
			u.ctl.MilliBPM.Store(u.mbpm)
			u.ctl.Enabled.Store(true)
			u.phase = phasePrepare
		}
	}
}

func (u *UI) handlePrepareKey(ev *tcell.EventKey) {
	slot := &u.slots[u.selected]
	switch ev.Key() {
	case tcell.KeyUp:
		u.selected = (u.selected + loopa.NumSlots - 1) % loopa.NumSlots
	case tcell.KeyDown:
		u.selected = (u.selected + 1) % loopa.NumSlots
	case tcell.KeyLeft:
		if slot.lengthBeats > 0 {
			slot.lengthBeats--
		}
	case tcell.KeyRight:
		if slot.lengthBeats < 64 {
			slot.lengthBeats++
		}
	case tcell.KeyRune:
		switch ev.Rune() {
		case 's':
			slot.starting = !slot.starting
		case 'l':
			slot.layering = !slot.layering
		case '+':
			if u.countIn < 16 {
				u.countIn++
			}
		case '-':
			if u.countIn > 1 {
				u.countIn--
			}
		case ' ':
			u.commitPrepare()
		}
	}
}

// commitPrepare publishes the drafted slot setup and requests the count-in.
func (u *UI) commitPrepare() {
	for i := range u.slots {
		ctl := &u.ctl.Slots[i]
		ctl.Length.Store(u.slots[i].lengthBeats)
		ctl.Starting.Store(u.slots[i].starting)
		ctl.Layering.Store(u.slots[i].layering)
	}
	u.ctl.CountInLength.Store(u.countIn)
	u.ctl.CountIn.Store(true)
	u.phase = phaseCountIn
}

func (u *UI) handleRollingKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyUp:
		u.selected = (u.selected + loopa.NumSlots - 1) % loopa.NumSlots
	case tcell.KeyDown:
		u.selected = (u.selected + 1) % loopa.NumSlots
	case tcell.KeyRune:
		switch ev.Rune() {
		case 's':
			starting := &u.ctl.Slots[u.selected].Starting
			starting.Store(!starting.Load())
		case ' ':
			// Back to setup: silence the engine and start over.
			u.ctl.Enabled.Store(false)
			u.phase = phaseSetup
		}
	}
}

func (u *UI) draw() {
	u.screen.Clear()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	title := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	row := 0
	u.drawText(0, row, title, fmt.Sprintf("loopa  [%s]", u.phase))
	row += 2

	switch u.phase {
	case phaseSetup:
		u.drawText(0, row, style, fmt.Sprintf("BPM: %.3f  (step %.3f)",
			float64(u.mbpm)/1000, float64(u.precision)/1000))
		row += 2
		u.drawText(0, row, dim, "left/right adjust  tab step  space continue  q quit")
	case phasePrepare:
		u.drawText(0, row, style, fmt.Sprintf("BPM %.3f   count-in %d beats", float64(u.mbpm)/1000, u.countIn))
		row += 2
		row = u.drawSlots(row, true)
		row++
		u.drawText(0, row, dim, "up/down select  left/right length  s arm  l layer  +/- count-in  space go  q quit")
	case phaseCountIn:
		u.drawText(0, row, style, "counting in...")
		row += 2
		u.drawText(0, row, dim, "q quit")
	case phaseRolling:
		millibeat := u.ctl.CurrentMillibeat.Load()
		u.drawText(0, row, style, fmt.Sprintf("beat %d.%03d", millibeat/1000, millibeat%1000))
		row += 2
		row = u.drawSlots(row, false)
		row++
		u.drawText(0, row, dim, "up/down select  s arm/stop  space back to setup  q quit")
	}

	u.drawMessages(row + 2)
}

// drawSlots renders one line per slot. In the prepare phase the drafted
// values are shown; while rolling the engine's published state is.
func (u *UI) drawSlots(row int, draft bool) int {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	selStyle := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)

	for i := 0; i < loopa.NumSlots; i++ {
		var line string
		if draft {
			s := u.slots[i]
			mark := " "
			if s.starting {
				mark = "*"
			}
			layer := ""
			if s.layering {
				layer = " layer"
			}
			line = fmt.Sprintf("loop %d  %2d beats  %s%s", i, s.lengthBeats, mark, layer)
		} else {
			ctl := &u.ctl.Slots[i]
			state := "idle"
			switch {
			case ctl.Recording.Load():
				state = "REC"
			case ctl.Playing.Load():
				state = "play"
			case ctl.Starting.Load():
				state = "armed"
			}
			line = fmt.Sprintf("loop %d  %2d beats  %s", i, ctl.Length.Load(), state)
		}

		st := style
		if i == u.selected {
			st = selStyle
		}
		u.drawText(2, row, st, line)
		row++
	}
	return row
}

func (u *UI) drawMessages(row int) {
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for i, msg := range u.msgs.Recent(5) {
		u.drawText(0, row+i, dim, msg)
	}
}

func (u *UI) drawText(x, y int, style tcell.Style, text string) {
	for i, r := range text {
		u.screen.SetContent(x+i, y, r, nil, style)
	}
}
