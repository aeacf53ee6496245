// Package ui is the terminal front end of famtree: the person search on the
// left, the focal person card on the right.
package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/recera/famtree/pkg/family"
	"github.com/recera/famtree/pkg/reactive"
	"github.com/recera/famtree/pkg/search"
	"github.com/recera/famtree/pkg/treeview"
)

// Options configures the model.
type Options struct {
	Limit       int
	GraceDelay  time.Duration
	Placeholder string
	// Main is the initial focal person.
	Main   family.ID
	Keys   *KeyMap
	Logger *slog.Logger
}

// Model is the bubbletea model of the search screen.
type Model struct {
	width  int
	height int

	widget *widget
	timers *timers
	ctl    *search.Controller
	card   *treeview.Card
	focal  *reactive.State[family.ID]
	// heading names the focal person above the card
	heading *reactive.Computed[family.ID, string]
	unsub   func()

	keys     KeyMap
	help     help.Model
	showHelp bool
	quitting bool
	status   string
}

// New builds the screen over people. dir resolves relatives for the card.
func New(people []family.Person, dir treeview.Directory, opts Options) (*Model, error) {
	m := &Model{
		widget: newWidget(),
		timers: &timers{},
		card:   treeview.NewCard(dir, opts.Main),
		focal:  reactive.NewState(opts.Main),
		keys:   DefaultKeyMap,
		help:   help.New(),
	}
	if opts.Keys != nil {
		m.keys = *opts.Keys
	}

	animate := true
	center := treeview.Focus(m.card)
	m.unsub = m.focal.Subscribe(func(id family.ID) { center(id, animate) })
	m.heading = reactive.NewComputed[family.ID, string](m.focal, func(id family.ID) string {
		return headingFor(dir, id)
	})

	searchOpts := []search.ControllerOption{
		search.WithDeferrer(m.timers),
		search.WithLogger(opts.Logger),
		search.WithLimit(opts.Limit),
	}
	if opts.GraceDelay > 0 {
		searchOpts = append(searchOpts, search.WithGraceDelay(opts.GraceDelay))
	}
	if opts.Placeholder != "" {
		searchOpts = append(searchOpts, search.WithPlaceholder(opts.Placeholder))
	}

	ctl, err := search.New(m.widget, "search", people, func(id family.ID, a bool) {
		animate = a
		m.status = fmt.Sprintf("centered on %s", id)
		m.focal.Set(id)
	}, searchOpts...)
	if err != nil {
		return nil, err
	}
	m.ctl = ctl
	m.widget.Focus()
	return m, nil
}

// Controller exposes the search controller, for dataset updates.
func (m *Model) Controller() *search.Controller { return m.ctl }

// Card returns the focal person card.
func (m *Model) Card() *treeview.Card { return m.card }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case timerMsg:
		m.timers.fire(msg.task)

	case DatasetMsg:
		m.apply(msg.Change)

	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, m.timers.drain()...)
	if m.quitting {
		m.shutdown()
		cmds = append(cmds, tea.Quit)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return nil
	}

	if !m.widget.HasFocus() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		case key.Matches(msg, m.keys.Switch), key.Matches(msg, m.keys.Search):
			m.widget.Focus()
			m.ctl.Focus()
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		m.ctl.KeyDown("ArrowDown")
	case key.Matches(msg, m.keys.Up):
		m.ctl.KeyDown("ArrowUp")
	case key.Matches(msg, m.keys.Select):
		m.ctl.KeyDown("Enter")
	case key.Matches(msg, m.keys.Close):
		m.ctl.KeyDown("Escape")
	case key.Matches(msg, m.keys.Switch):
		m.widget.Blur()
		m.ctl.FocusOut()
	default:
		before := m.widget.input.Value()
		var cmd tea.Cmd
		m.widget.input, cmd = m.widget.input.Update(msg)
		if after := m.widget.input.Value(); after != before {
			m.ctl.Input(after)
		}
		return cmd
	}
	return nil
}

// DatasetMsg delivers a dataset change to a running program.
type DatasetMsg struct{ Change family.Change }

func (m *Model) apply(c family.Change) {
	for _, id := range c.Removed {
		m.ctl.RemovePerson(id)
	}
	for _, p := range c.Added {
		m.ctl.UpdatePerson(p)
	}
	m.status = fmt.Sprintf("dataset revision %d", c.Revision)
	// refresh the card in case the focal person changed
	m.focal.Set(m.focal.Get())
}

func (m *Model) shutdown() {
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
		m.heading.Stop()
	}
	m.ctl.Destroy()
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	left := m.renderSearch()
	right := m.renderCard()
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Arbre généalogique"))
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(mutedStyle.Render(m.status))
		b.WriteString("\n")
	}
	if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m *Model) renderSearch() string {
	lines := []string{m.widget.input.View()}
	v := m.widget.view
	if v.Open {
		for i, opt := range v.Options {
			if i == v.Highlight {
				lines = append(lines, selectedStyle.Render(opt.Label))
			} else {
				lines = append(lines, optionStyle.Render(opt.Label))
			}
		}
	}
	style := paneStyle
	if m.widget.HasFocus() {
		style = activePaneStyle
	}
	return style.Width(36).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderCard() string {
	style := paneStyle
	if !m.widget.HasFocus() {
		style = activePaneStyle
	}
	body := m.card.Text()
	if h := m.heading.Get(); h != "" {
		body = titleStyle.Render(h) + "\n\n" + body
	}
	return style.Width(40).Render(body)
}

func headingFor(dir treeview.Directory, id family.ID) string {
	if id == "" || dir == nil {
		return ""
	}
	if p, _, ok := dir.Relatives(id); ok {
		return "Centered on " + p.DisplayName()
	}
	return ""
}
