// Package teatest drives bubbletea models, such as huh forms, in tests
// without starting a tea.Program.
//
// Messages go straight to Update and the returned commands are run in the
// calling test. Commands that block on timers (cursor blink, spinners) are
// dropped after a short wait.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds how many chained commands one message may trigger.
const MaxDrainDepth = 100

const cmdTimeout = 10 * time.Millisecond

// Driver feeds messages to a tea.Model and runs its commands inline.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once a tea.QuitMsg or tea.InterruptMsg comes back
	// from a command. Later sends are ignored.
	Quitting bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithSize delivers a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		updated, _ := d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
		d.Model = updated
	}
}

// New wraps model. Call DrainInit before sending keys.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DrainInit runs the model's Init command.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drain(d.Model.Init(), 0)
}

// Send passes msg through Update and drains what it returns.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	updated, cmd := d.Model.Update(msg)
	d.Model = updated
	d.drain(cmd, 0)
}

func (d *Driver) press(t tea.KeyType) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: t})
}

// Type sends s one rune at a time.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (d *Driver) PressEnter()    { d.T.Helper(); d.press(tea.KeyEnter) }
func (d *Driver) PressTab()      { d.T.Helper(); d.press(tea.KeyTab) }
func (d *Driver) PressShiftTab() { d.T.Helper(); d.press(tea.KeyShiftTab) }
func (d *Driver) PressEsc()      { d.T.Helper(); d.press(tea.KeyEsc) }
func (d *Driver) PressCtrlC()    { d.T.Helper(); d.press(tea.KeyCtrlC) }
func (d *Driver) PressUp()       { d.T.Helper(); d.press(tea.KeyUp) }
func (d *Driver) PressDown()     { d.T.Helper(); d.press(tea.KeyDown) }
func (d *Driver) PressSpace()    { d.T.Helper(); d.press(tea.KeySpace) }

// View renders the model.
func (d *Driver) View() string {
	return d.Model.View()
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest: stopped draining at depth %d", depth)
		return
	}

	msg := runCmd(cmd)
	if msg == nil || isTimerMsg(msg) {
		return
	}

	switch m := msg.(type) {
	case tea.BatchMsg:
		for _, sub := range m {
			d.drain(sub, depth+1)
		}
		return
	case tea.QuitMsg, tea.InterruptMsg:
		d.Quitting = true
		updated, _ := d.Model.Update(msg)
		d.Model = updated
		return
	}

	updated, next := d.Model.Update(msg)
	d.Model = updated
	d.drain(next, depth+1)
}

// runCmd returns nil when cmd does not finish within cmdTimeout.
func runCmd(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(cmdTimeout):
		return nil
	}
}

// isTimerMsg matches the unexported blink and tick messages of bubbles
// components, which re-arm themselves forever.
func isTimerMsg(msg tea.Msg) bool {
	name := strings.ToLower(fmt.Sprintf("%T", msg))
	return strings.Contains(name, "blink") || strings.Contains(name, "tick")
}
