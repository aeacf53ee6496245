package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/famtree/pkg/scheduler"
	"github.com/recera/famtree/pkg/search"
)

// widget is the terminal search.Surface: a text input and the dropdown
// lines below it.
type widget struct {
	input   textinput.Model
	view    search.View
	events  search.Events
	focused bool
	removed bool
}

func newWidget() *widget {
	ti := textinput.New()
	ti.Prompt = "🔍 "
	ti.CharLimit = 120
	ti.Width = 30
	return &widget{input: ti, view: search.View{Highlight: search.NoHighlight}}
}

// Mount implements search.Host; the terminal has a single mount point.
func (w *widget) Mount(string) (search.Surface, error) { return w, nil }

func (w *widget) Bind(h search.Events) { w.events = h }

func (w *widget) Render(v search.View) {
	if w.removed {
		return
	}
	w.view = v
	w.input.Placeholder = v.Placeholder
	if w.input.Value() != v.Text {
		w.input.SetValue(v.Text)
		w.input.CursorEnd()
	}
}

func (w *widget) Focus() {
	w.focused = true
	w.input.Focus()
}

func (w *widget) Blur() {
	w.focused = false
	w.input.Blur()
}

func (w *widget) HasFocus() bool { return w.focused && !w.removed }

func (w *widget) Remove() {
	w.removed = true
	w.focused = false
	w.input.Blur()
}

// timerMsg fires a deferred call on the Update loop.
type timerMsg struct{ task *timerTask }

type timerTask struct {
	fn   func()
	done bool
}

func (t *timerTask) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	return true
}

// timers is a scheduler.Deferrer for bubbletea: calls are turned into tick
// commands the model returns from Update, so they run on the Update loop.
type timers struct {
	queued []tea.Cmd
	live   []*timerTask
}

func (d *timers) AfterFunc(delay time.Duration, fn func()) scheduler.Task {
	t := &timerTask{fn: fn}
	d.live = append(d.live, t)
	d.queued = append(d.queued, tea.Tick(delay, func(time.Time) tea.Msg { return timerMsg{t} }))
	return t
}

// drain returns the commands queued since the last call.
func (d *timers) drain() []tea.Cmd {
	cmds := d.queued
	d.queued = nil
	return cmds
}

// fire runs t unless it was stopped.
func (d *timers) fire(t *timerTask) {
	for i, x := range d.live {
		if x == t {
			d.live = append(d.live[:i], d.live[i+1:]...)
			break
		}
	}
	if t.done {
		return
	}
	t.done = true
	t.fn()
}

// pending returns the tasks that can still fire.
func (d *timers) pending() []*timerTask {
	var out []*timerTask
	for _, t := range d.live {
		if !t.done {
			out = append(out, t)
		}
	}
	return out
}
