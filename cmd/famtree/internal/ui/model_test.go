package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/famtree/pkg/family"
)

func testPeople() []family.Person {
	jean := family.Person{ID: "1", Data: family.Data{FirstName: "Jean", LastName: "Marot"}}
	jean.Rels.Spouses = []family.ID{"2"}
	jeanne := family.Person{ID: "2", Data: family.Data{FirstName: "Jeanne", LastName: "Dupont"}}
	jeanne.Rels.Spouses = []family.ID{"1"}
	dup := family.Person{ID: "1", Data: family.Data{FirstName: "dup"}}
	return []family.Person{jean, jeanne, dup}
}

func newModel(t *testing.T) *Model {
	t.Helper()
	people := testPeople()
	m, err := New(people, family.NewStore(people), Options{})
	require.NoError(t, err)
	return m
}

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func press(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func TestModel_TypeAndSelect(t *testing.T) {
	m := newModel(t)
	assert.True(t, m.widget.HasFocus())
	assert.Len(t, m.Controller().Options(), 2)

	typeText(m, "jean")
	v := m.widget.view
	require.True(t, v.Open)
	require.Len(t, v.Options, 2)
	assert.Equal(t, -1, v.Highlight)
	assert.Contains(t, m.View(), "Jeanne Dupont")

	press(m, tea.KeyDown)
	press(m, tea.KeyDown)
	assert.Equal(t, 1, m.widget.view.Highlight)

	press(m, tea.KeyEnter)
	assert.False(t, m.widget.view.Open)
	assert.Equal(t, "Jeanne Dupont", m.widget.input.Value())
	assert.Equal(t, family.ID("2"), m.Card().Main())
	assert.Equal(t, 1, m.Card().Updates())
	assert.True(t, m.Card().LastUpdate().Initial)
	assert.Contains(t, m.View(), "Spouses: Jean Marot")
	assert.Equal(t, "Centered on Jeanne Dupont", m.heading.Get())
	assert.Contains(t, m.View(), "Centered on Jeanne Dupont")
}

func TestModel_HeadingFollowsFocal(t *testing.T) {
	people := testPeople()
	m, err := New(people, family.NewStore(people), Options{Main: "1"})
	require.NoError(t, err)
	assert.Equal(t, "Centered on Jean Marot", m.heading.Get())

	m.focal.Set("404")
	assert.Empty(t, m.heading.Get())

	press(m, tea.KeyCtrlC)
	m.focal.Set("2")
	assert.Empty(t, m.heading.Get(), "stopped with the program")
}

func TestModel_Escape(t *testing.T) {
	m := newModel(t)
	typeText(m, "j")
	require.True(t, m.widget.view.Open)

	press(m, tea.KeyEsc)
	assert.False(t, m.widget.view.Open)
	assert.False(t, m.widget.HasFocus(), "escape moves focus out of the search box")
}

func TestModel_FocusOutGrace(t *testing.T) {
	m := newModel(t)
	typeText(m, "jean")

	cmd := press(m, tea.KeyTab)
	assert.NotNil(t, cmd, "tab schedules the focus check")
	require.Len(t, m.timers.pending(), 1)
	assert.True(t, m.widget.view.Open, "the list stays open during the grace delay")

	m.Update(timerMsg{m.timers.pending()[0]})
	assert.False(t, m.widget.view.Open)
	assert.Empty(t, m.timers.pending())
}

func TestModel_FocusBackWithinGrace(t *testing.T) {
	m := newModel(t)
	typeText(m, "jean")

	press(m, tea.KeyTab)
	task := m.timers.pending()[0]
	press(m, tea.KeyTab)
	require.True(t, m.widget.HasFocus())

	m.Update(timerMsg{task})
	assert.True(t, m.widget.view.Open, "focus came back before the check ran")
}

func TestModel_Quit(t *testing.T) {
	m := newModel(t)

	typeText(m, "q")
	assert.Equal(t, "q", m.widget.input.Value(), "q is typed while searching")
	assert.False(t, m.quitting)

	press(m, tea.KeyTab)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
	assert.True(t, m.Controller().Destroyed())
	assert.Empty(t, m.View())
}

func TestModel_CtrlCQuitsFromSearch(t *testing.T) {
	m := newModel(t)
	press(m, tea.KeyCtrlC)
	assert.True(t, m.quitting)
}

func TestModel_Dataset(t *testing.T) {
	m := newModel(t)

	m.Update(DatasetMsg{Change: family.Change{
		Revision: 2,
		Added:    []family.Person{{ID: "3", Data: family.Data{FirstName: "Ana", LastName: "X"}}},
		Removed:  []family.ID{"2"},
	}})

	ids := func(text string) []family.ID {
		var out []family.ID
		for _, o := range m.Controller().Filter(text) {
			out = append(out, o.Value)
		}
		return out
	}
	assert.Equal(t, []family.ID{"3"}, ids("ana"))
	assert.Empty(t, ids("jeanne"))
	assert.Contains(t, m.View(), "dataset revision 2")

	m.Update(DatasetMsg{Change: family.Change{
		Revision: 3,
		Added:    []family.Person{{ID: "1", Data: family.Data{FirstName: "Jean", LastName: "Marrot"}}},
	}})
	assert.Equal(t, []family.ID{"1", "3"}, ids(""), "an edited record keeps its place")
	assert.Equal(t, []family.ID{"1"}, ids("marrot"))
}

func TestTimers(t *testing.T) {
	d := &timers{}
	ran := 0
	a := d.AfterFunc(0, func() { ran++ })
	b := d.AfterFunc(0, func() { ran += 10 })
	assert.Len(t, d.drain(), 2)
	assert.Empty(t, d.drain())

	assert.True(t, b.Stop())
	assert.False(t, b.Stop())
	d.fire(b.(*timerTask))
	d.fire(a.(*timerTask))
	d.fire(a.(*timerTask))
	assert.Equal(t, 1, ran)
	assert.Empty(t, d.pending())
}
