package search

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/recera/famtree/pkg/family"
	"github.com/recera/famtree/pkg/scheduler"
)

// ErrMissingMount is returned when the mount target does not exist.
var ErrMissingMount = errors.New("search: mount point not found")

// DefaultGraceDelay is how long a focus loss waits before closing the
// dropdown, so a click on an entry lands first.
const DefaultGraceDelay = 200 * time.Millisecond

// DefaultPlaceholder is shown in the empty input.
const DefaultPlaceholder = "Rechercher une personne..."

// SelectFunc receives the chosen person. animate asks the tree to transition
// rather than jump.
type SelectFunc func(id family.ID, animate bool)

// Events are the user inputs a surface forwards to the controller.
type Events interface {
	Input(text string)
	Focus()
	FocusOut()
	// KeyDown reports whether the key was consumed, so the surface can
	// suppress the default action.
	KeyDown(key string) bool
	Click(index int)
}

// Surface is where the widget is displayed.
type Surface interface {
	// Bind routes the surface's user events to h.
	Bind(h Events)
	Render(v View)
	// Focus and Blur move input focus in or out of the widget.
	Focus()
	Blur()
	// HasFocus reports whether focus is inside the widget subtree.
	HasFocus() bool
	// Remove deletes everything the surface created.
	Remove()
}

// Host creates surfaces under a mount target.
type Host interface {
	// Mount returns an error wrapping ErrMissingMount when selector does not
	// resolve.
	Mount(selector string) (Surface, error)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLimit caps the number of rendered entries.
func WithLimit(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithGraceDelay sets the focus-out grace delay.
func WithGraceDelay(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d >= 0 {
			c.grace = d
		}
	}
}

// WithPlaceholder sets the input placeholder.
func WithPlaceholder(p string) ControllerOption {
	return func(c *Controller) { c.placeholder = p }
}

// WithDeferrer sets what schedules the focus-out check. The default uses
// plain timers.
func WithDeferrer(d scheduler.Deferrer) ControllerOption {
	return func(c *Controller) {
		if d != nil {
			c.deferrer = d
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// Controller drives one search widget. It is not safe for concurrent use:
// every method must run on the surface's event loop.
type Controller struct {
	index    *Index
	state    State
	surface  Surface
	onSelect SelectFunc

	limit       int
	grace       time.Duration
	placeholder string
	deferrer    scheduler.Deferrer
	log         *slog.Logger

	pending   scheduler.Task
	destroyed bool
}

// New builds the option index from people, mounts the widget under selector
// and returns the controller. onSelect may be nil.
func New(host Host, selector string, people []family.Person, onSelect SelectFunc, opts ...ControllerOption) (*Controller, error) {
	c := &Controller{
		index:       NewIndex(people),
		state:       State{Highlight: NoHighlight},
		onSelect:    onSelect,
		limit:       DefaultLimit,
		grace:       DefaultGraceDelay,
		placeholder: DefaultPlaceholder,
		deferrer:    scheduler.Timers{},
		log:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	surface, err := host.Mount(selector)
	if err != nil {
		if errors.Is(err, ErrMissingMount) {
			return nil, err
		}
		return nil, fmt.Errorf("search: mount %q: %w", selector, err)
	}
	c.surface = surface
	surface.Bind(c)
	c.render()

	c.log.Debug("search mounted", "selector", selector, "options", c.index.Len())
	return c, nil
}

// Filter returns the options matching text; see Index.Filter.
func (c *Controller) Filter(text string) []Option {
	return c.index.Filter(text)
}

// Options returns the whole index.
func (c *Controller) Options() []Option {
	return c.index.Options()
}

// State returns a snapshot of the widget state.
func (c *Controller) State() State {
	return c.state.clone()
}

// View returns what the surface currently shows.
func (c *Controller) View() View {
	return View{
		Text:        c.state.Text,
		Placeholder: c.placeholder,
		Options:     append([]Option(nil), c.state.Visible...),
		Highlight:   c.state.Highlight,
		Open:        c.state.Open(),
	}
}

// Input handles a change of the input text.
func (c *Controller) Input(text string) {
	if c.destroyed {
		return
	}
	c.state.Text = text
	c.state.Focused = true
	c.activate()
}

// Focus handles the input gaining focus: the dropdown opens on the current
// text.
func (c *Controller) Focus() {
	if c.destroyed {
		return
	}
	c.state.Focused = true
	c.activate()
}

func (c *Controller) activate() {
	matches := c.index.Filter(c.state.Text)
	c.state = c.state.show(matches, c.limit)
	c.log.Debug("search filtered", "text", c.state.Text, "matches", len(matches), "shown", len(c.state.Visible))
	c.render()
}

// KeyDown handles keyboard navigation. ArrowDown, ArrowUp and Enter are
// always consumed.
func (c *Controller) KeyDown(key string) bool {
	if c.destroyed {
		return false
	}
	switch key {
	case KeyArrowDown:
		c.state = c.state.move(1)
		c.render()
		return true
	case KeyArrowUp:
		c.state = c.state.move(-1)
		c.render()
		return true
	case KeyEnter:
		if opt, ok := c.state.Highlighted(); ok {
			c.Select(opt)
		}
		return true
	case KeyEscape:
		c.state = c.state.hide()
		c.state.Focused = false
		c.render()
		c.surface.Blur()
		return false
	}
	return false
}

// Click selects the i-th rendered entry. Out of range indexes are ignored.
func (c *Controller) Click(i int) {
	if c.destroyed || i < 0 || i >= len(c.state.Visible) {
		return
	}
	c.Select(c.state.Visible[i])
}

// Select puts the option's label in the input, closes the dropdown and
// reports the choice to the select callback.
func (c *Controller) Select(opt Option) {
	if c.destroyed {
		return
	}
	c.state.Text = opt.Label
	c.state = c.state.hide()
	c.render()

	c.log.Debug("search selected", "id", opt.Value, "label", opt.Label)
	if c.onSelect != nil {
		c.onSelect(opt.Value, true)
	}
}

// FocusOut schedules a check that closes the dropdown if focus has left the
// widget once the grace delay is over. A newer focus loss replaces a pending
// check.
func (c *Controller) FocusOut() {
	if c.destroyed {
		return
	}
	if c.pending != nil {
		c.pending.Stop()
	}
	var task scheduler.Task
	task = c.deferrer.AfterFunc(c.grace, func() { c.checkFocus(task) })
	c.pending = task
}

func (c *Controller) checkFocus(task scheduler.Task) {
	if c.destroyed || c.pending != task {
		return
	}
	c.pending = nil
	if c.surface.HasFocus() {
		return
	}
	c.state.Focused = false
	if c.state.Open() {
		c.state = c.state.hide()
		c.render()
	}
}

// Clear empties the input and closes the dropdown.
func (c *Controller) Clear() {
	if c.destroyed {
		return
	}
	c.state.Text = ""
	c.state = c.state.hide()
	c.render()
}

// FocusInput moves focus to the input.
func (c *Controller) FocusInput() {
	if c.destroyed {
		return
	}
	c.surface.Focus()
}

// SetPlaceholder changes the input placeholder.
func (c *Controller) SetPlaceholder(p string) {
	if c.destroyed {
		return
	}
	c.placeholder = p
	c.render()
}

// AddPerson indexes p unless its id is already present. The dropdown is not
// touched; the next input event sees the new option.
func (c *Controller) AddPerson(p family.Person) bool {
	if c.destroyed {
		return false
	}
	return c.index.Add(p)
}

// UpdatePerson relabels the option for p.ID in place, or adds it when the id
// is new. The dropdown is left as it is.
func (c *Controller) UpdatePerson(p family.Person) bool {
	if c.destroyed {
		return false
	}
	return c.index.Update(p)
}

// RemovePerson drops every option for id from the index. Like AddPerson it
// leaves the dropdown as it is.
func (c *Controller) RemovePerson(id family.ID) int {
	if c.destroyed {
		return 0
	}
	return c.index.Remove(id)
}

// Destroy cancels the pending focus check and removes the widget. Later
// calls on the controller do nothing.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.surface.Remove()
}

// Destroyed reports whether Destroy was called.
func (c *Controller) Destroyed() bool { return c.destroyed }

func (c *Controller) render() {
	c.surface.Render(c.View())
}
