package treeview

import (
	"fmt"
	"strings"
	"sync"

	"github.com/recera/famtree/pkg/family"
	"github.com/recera/famtree/pkg/styling"
	"github.com/recera/famtree/pkg/vdom"
)

// Directory resolves a person and their direct relatives.
// *family.Store satisfies it.
type Directory interface {
	Relatives(id family.ID) (family.Person, family.Relatives, bool)
}

var cardStyles = styling.StyleWithRegistry(`
.focal-card {
	font-family: sans-serif;
	color: #eaeef3;
	background-color: rgba(0, 0, 0, 0.8);
	border: 1px solid #555;
	border-radius: 4px;
	padding: 12px;
	max-width: 320px;
}
.focal-name {
	font-size: 18px;
	margin-bottom: 8px;
}
.focal-section {
	font-size: 13px;
	color: #aab;
	margin-top: 6px;
}
.focal-missing {
	font-style: italic;
	color: #888;
}
`)

// Card is the tree display used outside the browser: it shows the focal
// person with parents, spouses and children. It is safe for concurrent use.
type Card struct {
	dir Directory

	mu       sync.RWMutex
	main     family.ID
	updates  int
	last     UpdateOptions
	onUpdate func(family.ID, UpdateOptions)
}

// NewCard creates a card over dir centered on main.
func NewCard(dir Directory, main family.ID) *Card {
	return &Card{dir: dir, main: main}
}

// SetMainPerson implements API.
func (c *Card) SetMainPerson(id family.ID) {
	c.mu.Lock()
	c.main = id
	c.mu.Unlock()
}

// Update implements API.
func (c *Card) Update(opts UpdateOptions) {
	c.mu.Lock()
	c.updates++
	c.last = opts
	main, fn := c.main, c.onUpdate
	c.mu.Unlock()
	if fn != nil {
		fn(main, opts)
	}
}

// OnUpdate registers fn to run after each Update.
func (c *Card) OnUpdate(fn func(family.ID, UpdateOptions)) {
	c.mu.Lock()
	c.onUpdate = fn
	c.mu.Unlock()
}

// Main returns the focal person id.
func (c *Card) Main() family.ID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.main
}

// Updates returns how many times Update ran.
func (c *Card) Updates() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updates
}

// LastUpdate returns the options of the latest Update.
func (c *Card) LastUpdate() UpdateOptions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Node renders the card.
func (c *Card) Node() *vdom.VNode {
	main := c.Main()
	root := vdom.Div().ID("focal-card").Class(cardStyles.Class("focal-card"))
	p, rel, ok := c.lookup(main)
	if !ok {
		return root.Children(
			vdom.Div().Class(cardStyles.Class("focal-missing")).Text(missingText(main)).Build(),
		).Build()
	}

	root.Data("id", string(p.ID)).Children(
		vdom.Div().Class(cardStyles.Class("focal-name")).Text(displayName(p)).Build(),
	)
	for _, s := range sections(rel) {
		root.Children(vdom.Div().
			Class(cardStyles.Class("focal-section")).
			Text(s.title + ": " + strings.Join(s.names, ", ")).
			Build())
	}
	return root.Build()
}

// Text renders the card as plain lines for a terminal.
func (c *Card) Text() string {
	main := c.Main()
	p, rel, ok := c.lookup(main)
	if !ok {
		return missingText(main)
	}
	var b strings.Builder
	b.WriteString(displayName(p))
	if p.Data.Birthday != "" {
		fmt.Fprintf(&b, " (%s)", p.Data.Birthday)
	}
	for _, s := range sections(rel) {
		fmt.Fprintf(&b, "\n%s: %s", s.title, strings.Join(s.names, ", "))
	}
	return b.String()
}

func (c *Card) lookup(id family.ID) (family.Person, family.Relatives, bool) {
	if id == "" || c.dir == nil {
		return family.Person{}, family.Relatives{}, false
	}
	return c.dir.Relatives(id)
}

func missingText(id family.ID) string {
	if id == "" {
		return "No person selected"
	}
	return fmt.Sprintf("Unknown person %q", id)
}

func displayName(p family.Person) string {
	if l := p.DisplayName(); l != "" {
		return l
	}
	return string(p.ID)
}

type section struct {
	title string
	names []string
}

func sections(rel family.Relatives) []section {
	var out []section
	var parents []string
	if rel.Father != nil {
		parents = append(parents, displayName(*rel.Father))
	}
	if rel.Mother != nil {
		parents = append(parents, displayName(*rel.Mother))
	}
	if len(parents) > 0 {
		out = append(out, section{"Parents", parents})
	}
	if names := names(rel.Spouses); len(names) > 0 {
		out = append(out, section{"Spouses", names})
	}
	if names := names(rel.Children); len(names) > 0 {
		out = append(out, section{"Children", names})
	}
	return out
}

func names(people []family.Person) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = displayName(p)
	}
	return out
}
