package search

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/famtree/pkg/family"
)

func person(id, fn, ln string) family.Person {
	return family.Person{ID: family.ID(id), Data: family.Data{FirstName: fn, LastName: ln}}
}

func sampleDataset() []family.Person {
	return []family.Person{
		person("1", "Jean", "Marot"),
		person("2", "Jeanne", "Dupont"),
		person("1", "dup", ""),
	}
}

func values(opts []Option) []family.ID {
	out := make([]family.ID, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}

func TestNewIndexDedupFirstWins(t *testing.T) {
	ix := NewIndex(sampleDataset())

	require.Equal(t, 2, ix.Len())
	assert.Equal(t, []Option{
		{Label: "Jean Marot", Value: "1"},
		{Label: "Jeanne Dupont", Value: "2"},
	}, ix.Options())
}

func TestIndexLabelKeepsSeparator(t *testing.T) {
	ix := NewIndex([]family.Person{person("7", "Cher", ""), person("8", "Chérie", "Marot")})
	assert.Equal(t, "Cher ", ix.Options()[0].Label)
	assert.Equal(t, []family.ID{"7"}, values(ix.Filter("cher ")))
}

func TestIndexFilter(t *testing.T) {
	ix := NewIndex(sampleDataset())

	tests := []struct {
		text string
		want []family.ID
	}{
		{"", []family.ID{"1", "2"}},
		{"jean", []family.ID{"1", "2"}},
		{"JEANNE", []family.ID{"2"}},
		{"marot", []family.ID{"1"}},
		{"e d", []family.ID{"2"}},
		{"n m", []family.ID{"1"}},
		{"zzz", []family.ID{}},
		{strings.Repeat("a", 10000), []family.ID{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ix.Filter(tt.text)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, values(got))
		})
	}
}

func TestIndexFilterRefines(t *testing.T) {
	ix := NewIndex([]family.Person{
		person("1", "Anne", "Martin"),
		person("2", "Annette", "Leroy"),
		person("3", "Jean", "Annibal"),
		person("4", "Paul", "Simon"),
	})

	short := values(ix.Filter("ann"))
	long := values(ix.Filter("anne"))
	for _, id := range long {
		assert.Contains(t, short, id)
	}
	assert.Len(t, short, 3)
	assert.Equal(t, []family.ID{"1", "2"}, long)
}

func TestIndexAddRemove(t *testing.T) {
	ix := NewIndex(sampleDataset())

	assert.True(t, ix.Add(person("3", "Ana", "X")))
	assert.False(t, ix.Add(person("3", "Other", "Y")))
	assert.Equal(t, []family.ID{"3"}, values(ix.Filter("ana")))
	assert.True(t, ix.Contains("3"))

	assert.Equal(t, 1, ix.Remove("3"))
	assert.Empty(t, ix.Filter("ana"))
	assert.False(t, ix.Contains("3"))
	assert.Equal(t, 0, ix.Remove("3"))
	assert.Equal(t, 2, ix.Len())
}

func TestIndexUpdateKeepsOrder(t *testing.T) {
	ix := NewIndex([]family.Person{
		person("1", "Jean", "Marot"),
		person("2", "Jeanne", "Dupont"),
		person("3", "Ana", "Marot"),
	})

	assert.False(t, ix.Update(person("1", "Jean", "Marrot")))
	assert.Equal(t, []Option{
		{Label: "Jean Marrot", Value: "1"},
		{Label: "Jeanne Dupont", Value: "2"},
		{Label: "Ana Marot", Value: "3"},
	}, ix.Options())
	assert.Equal(t, []family.ID{"1"}, values(ix.Filter("marrot")))

	assert.True(t, ix.Update(person("4", "Léa", "Roux")))
	assert.Equal(t, []family.ID{"1", "2", "3", "4"}, values(ix.Filter("")))
	assert.Equal(t, 4, ix.Len())
}

func BenchmarkIndexFilter(b *testing.B) {
	people := make([]family.Person, 5000)
	for i := range people {
		people[i] = person(fmt.Sprint(i), fmt.Sprintf("Prénom%d", i), fmt.Sprintf("Nom%d", i%97))
	}
	ix := NewIndex(people)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.Filter("nom4")
	}
}
