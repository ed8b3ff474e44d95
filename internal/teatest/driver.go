// Package teatest drives a bubbletea model from a test without a tea.Program.
//
// Update is called directly and every returned Cmd is executed inline. A Cmd
// that does not return within the driver's timeout (a long tea.Tick, say) is
// dropped, so polling models can be tested one step at a time.
package teatest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxDepth bounds Cmd chains that keep producing messages.
const maxDepth = 64

const defaultTimeout = 50 * time.Millisecond

// Driver feeds messages to a tea.Model and records whether it asked to quit.
type Driver struct {
	t       testing.TB
	model   tea.Model
	timeout time.Duration

	Quit bool
}

type Option func(*Driver)

// WithTimeout sets how long a single Cmd may run before it is dropped.
func WithTimeout(d time.Duration) Option {
	return func(drv *Driver) { drv.timeout = d }
}

// Start builds a Driver and runs the model's Init command.
func Start(t testing.TB, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{t: t, model: model, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(d)
	}
	d.run(model.Init(), 0)
	return d
}

func (d *Driver) View() string { return d.model.View() }

// Send delivers msg and runs whatever Cmds follow from it.
func (d *Driver) Send(msg tea.Msg) {
	d.t.Helper()
	if d.Quit {
		return
	}
	var cmd tea.Cmd
	d.model, cmd = d.model.Update(msg)
	d.run(cmd, 0)
}

// Press sends a key by its bubbletea name: "q", "r", "esc", "ctrl+c".
func (d *Driver) Press(name string) {
	d.t.Helper()
	d.Send(keyMsg(name))
}

func keyMsg(name string) tea.KeyMsg {
	switch name {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
	}
}

func (d *Driver) run(cmd tea.Cmd, depth int) {
	d.t.Helper()
	if cmd == nil {
		return
	}
	if depth >= maxDepth {
		d.t.Logf("teatest: command chain deeper than %d, stopping", maxDepth)
		return
	}

	msg, ok := d.exec(cmd)
	if !ok || msg == nil {
		return
	}

	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, sub := range msg {
			d.run(sub, depth+1)
		}
	case tea.QuitMsg:
		d.Quit = true
	default:
		var next tea.Cmd
		d.model, next = d.model.Update(msg)
		d.run(next, depth+1)
	}
}

func (d *Driver) exec(cmd tea.Cmd) (tea.Msg, bool) {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()
	select {
	case msg := <-done:
		return msg, true
	case <-timer.C:
		return nil, false
	}
}
