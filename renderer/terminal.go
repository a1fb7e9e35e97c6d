// Package renderer draws field snapshots to a terminal.
package renderer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/mobsim/components"
	"github.com/pthm-cable/mobsim/field"
)

// statusLines is the number of rows reserved below the grid.
const statusLines = 2

// Terminal shows each generation on a tcell screen. Esc, q or Ctrl-C stop
// the run.
type Terminal struct {
	screen tcell.Screen
	delay  time.Duration

	events  chan tcell.Event
	stopped atomic.Bool

	done      chan struct{} // closed by Close
	pumpDone  chan struct{} // closed when pollEvents returns
	closeOnce sync.Once
}

// NewTerminal opens the controlling terminal. delay is slept after each
// frame so a run can be followed by eye.
func NewTerminal(delay time.Duration) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}
	return NewTerminalWithScreen(screen, delay), nil
}

// NewTerminalWithScreen wraps an already initialised screen.
func NewTerminalWithScreen(screen tcell.Screen, delay time.Duration) *Terminal {
	t := &Terminal{
		screen:   screen,
		delay:    delay,
		events:   make(chan tcell.Event, 64),
		done:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}
	go t.pollEvents()
	return t
}

// pollEvents forwards screen events until the screen is finalised. A full
// buffer blocks the pump until Continue drains it or Close is called.
func (t *Terminal) pollEvents() {
	defer close(t.pumpDone)
	defer close(t.events)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case t.events <- ev:
		case <-t.done:
			return
		}
	}
}

// Continue drains pending input and reports whether the run should go on.
func (t *Terminal) Continue() bool {
	for {
		select {
		case ev, ok := <-t.events:
			if !ok {
				t.stopped.Store(true)
				return false
			}
			t.handleEvent(ev)
		default:
			return !t.stopped.Load()
		}
	}
}

func (t *Terminal) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			t.stopped.Store(true)
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			t.stopped.Store(true)
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
}

// Show draws the generation and a status line.
func (t *Terminal) Show(step int32, f *field.Field, env components.Environment) {
	t.screen.Clear()
	w, h := t.screen.Size()

	rows := min(f.Depth(), h-statusLines)
	cols := min(f.Width(), w)
	arena := f.Arena()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			loc := components.Loc(row, col)
			if e, ok := f.MobAt(loc); ok {
				if m := arena.Mob(e); m != nil && m.Alive {
					glyph, style := mobGlyph(m)
					t.screen.SetContent(col, row, glyph, nil, style)
					continue
				}
			}
			if e, ok := f.PlantAt(loc); ok {
				if p := arena.Plant(e); p != nil && p.Alive {
					glyph, style := plantGlyph(p)
					t.screen.SetContent(col, row, glyph, nil, style)
				}
			}
		}
	}

	if rows >= 0 && h > rows {
		status := fmt.Sprintf("Step: %s  %s  %s  %s",
			humanize.Comma(int64(step)), env.Time, env.Weather, env.Season)
		t.drawText(0, rows, status, statusStyle)
	}
	if rows+1 < h {
		t.drawText(0, rows+1, f.PopulationDetails().String(), tcell.StyleDefault)
	}

	t.screen.Show()
	if t.delay > 0 {
		time.Sleep(t.delay)
	}
}

func (t *Terminal) drawText(x, y int, text string, style tcell.Style) {
	w, _ := t.screen.Size()
	for _, r := range text {
		if x >= w {
			return
		}
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// Close restores the terminal and waits for the event pump to stop. Calling
// it again is a no-op.
func (t *Terminal) Close() {
	t.closeOnce.Do(func() {
		close(t.done)
		t.screen.Fini()
		<-t.pumpDone
	})
}
