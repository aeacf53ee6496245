package family

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marotJSON = `[
  {"id": 1, "rels": {"spouses": ["2"], "children": ["3"]}, "data": {"fn": "Jean", "ln": "Marot", "gender": "M"}},
  {"id": "2", "rels": {"spouses": [1], "children": ["3"]}, "data": {"fn": "Jeanne", "ln": "Dupont", "gender": "F"}},
  {"id": "3", "rels": {"father": "1", "mother": "2"}, "data": {"fn": "Clément", "ln": "Marot"}}
]`

func TestParse_JSONMixedIDs(t *testing.T) {
	people, err := Parse(strings.NewReader(marotJSON), FormatJSON)
	require.NoError(t, err)
	require.Len(t, people, 3)

	assert.Equal(t, ID("1"), people[0].ID)
	assert.Equal(t, []ID{"1"}, people[1].Rels.Spouses)
	assert.Equal(t, "Jean Marot", people[0].Label())
	assert.Equal(t, ID("2"), people[2].Rels.Mother)
}

func TestParse_YAML(t *testing.T) {
	src := `
- id: 7
  rels:
    children: [8]
  data:
    fn: Ana
    ln: Silva
- id: "8"
  rels:
    mother: 7
  data:
    fn: Rui
`
	people, err := Parse(strings.NewReader(src), FormatYAML)
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, ID("7"), people[0].ID)
	assert.Equal(t, []ID{"8"}, people[0].Rels.Children)
	assert.Equal(t, ID("7"), people[1].Rels.Mother)
	assert.Equal(t, "Rui ", people[1].Label())
}

func TestParse_BadID(t *testing.T) {
	_, err := Parse(strings.NewReader(`[{"id": {"x": 1}}]`), FormatJSON)
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(marotJSON), 0o644))

	people, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, people, 3)

	_, err = Load(filepath.Join(dir, "data.csv"))
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestRelativesOf(t *testing.T) {
	people, err := Parse(strings.NewReader(marotJSON), FormatJSON)
	require.NoError(t, err)
	byID := Index(people)

	child := RelativesOf(byID["3"], byID)
	require.NotNil(t, child.Father)
	require.NotNil(t, child.Mother)
	assert.Equal(t, "Jean Marot", child.Father.Label())
	assert.Equal(t, "Jeanne Dupont", child.Mother.Label())

	parent := RelativesOf(byID["1"], byID)
	assert.Nil(t, parent.Father)
	require.Len(t, parent.Spouses, 1)
	require.Len(t, parent.Children, 1)
	assert.Equal(t, ID("3"), parent.Children[0].ID)
}

func TestLabel_KeepsSeparator(t *testing.T) {
	assert.Equal(t, "Jean ", Person{Data: Data{FirstName: "Jean"}}.Label())
	assert.Equal(t, " Marot", Person{Data: Data{LastName: "Marot"}}.Label())
	assert.Equal(t, " ", Person{}.Label())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Jean", Person{Data: Data{FirstName: "Jean"}}.DisplayName())
	assert.Equal(t, "Jean Marot", Person{Data: Data{FirstName: "Jean", LastName: "Marot"}}.DisplayName())
	assert.Equal(t, "", Person{}.DisplayName())
}
