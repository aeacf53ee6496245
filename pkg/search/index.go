// Package search implements the person search widget: an option index built
// from the dataset, a dropdown state machine driven by input events and a
// callback that re-centers the tree on the chosen person.
//
// State transitions are pure (Index, State); everything visible goes through
// a Surface so the same controller runs in the browser, on the server and in
// a terminal.
package search

import (
	"strings"

	"github.com/recera/famtree/pkg/family"
)

// Option is a selectable person.
type Option struct {
	Label string
	Value family.ID
}

type entry struct {
	opt    Option
	folded string
}

// Index holds one option per person id in first-seen order. It is not safe
// for concurrent use.
type Index struct {
	entries []entry
	ids     map[family.ID]struct{}
}

// NewIndex builds the index from a dataset. When an id appears more than
// once the first record wins.
func NewIndex(people []family.Person) *Index {
	ix := &Index{
		entries: make([]entry, 0, len(people)),
		ids:     make(map[family.ID]struct{}, len(people)),
	}
	for _, p := range people {
		ix.Add(p)
	}
	return ix
}

// Add inserts p unless its id is already indexed. It reports whether p was
// added.
func (ix *Index) Add(p family.Person) bool {
	if _, ok := ix.ids[p.ID]; ok {
		return false
	}
	label := p.Label()
	ix.ids[p.ID] = struct{}{}
	ix.entries = append(ix.entries, entry{
		opt:    Option{Label: label, Value: p.ID},
		folded: strings.ToLower(label),
	})
	return true
}

// Update rewrites the label of an indexed id where it stands, so a changed
// record keeps its place. A new id is appended as with Add. It reports
// whether p was added.
func (ix *Index) Update(p family.Person) bool {
	if _, ok := ix.ids[p.ID]; !ok {
		return ix.Add(p)
	}
	label := p.Label()
	for i := range ix.entries {
		if ix.entries[i].opt.Value == p.ID {
			ix.entries[i] = entry{
				opt:    Option{Label: label, Value: p.ID},
				folded: strings.ToLower(label),
			}
		}
	}
	return false
}

// Remove drops every option carrying id and returns how many were dropped.
func (ix *Index) Remove(id family.ID) int {
	if _, ok := ix.ids[id]; !ok {
		return 0
	}
	delete(ix.ids, id)
	kept := ix.entries[:0]
	removed := 0
	for _, e := range ix.entries {
		if e.opt.Value == id {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(ix.entries); i++ {
		ix.entries[i] = entry{}
	}
	ix.entries = kept
	return removed
}

// Contains reports whether id is indexed.
func (ix *Index) Contains(id family.ID) bool {
	_, ok := ix.ids[id]
	return ok
}

// Len returns the number of options.
func (ix *Index) Len() int { return len(ix.entries) }

// Options returns every option in index order.
func (ix *Index) Options() []Option {
	out := make([]Option, len(ix.entries))
	for i, e := range ix.entries {
		out[i] = e.opt
	}
	return out
}

// Filter returns the options whose label contains text, ignoring case, in
// index order. The empty text matches everything.
func (ix *Index) Filter(text string) []Option {
	needle := strings.ToLower(text)
	out := make([]Option, 0)
	for _, e := range ix.entries {
		if strings.Contains(e.folded, needle) {
			out = append(out, e.opt)
		}
	}
	return out
}
