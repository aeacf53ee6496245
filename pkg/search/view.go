package search

import (
	"strconv"

	"github.com/recera/famtree/pkg/styling"
	"github.com/recera/famtree/pkg/vdom"
)

// Element ids set on the widget. Only one widget per page is expected.
const (
	ContainerID = "search-container"
	InputID     = "family-search-input"
	DropdownID  = "search-dropdown"
)

// Styles is the widget stylesheet. It is registered globally so page
// renderers pick it up through styling.GetAllCSS.
var Styles = styling.StyleWithRegistry(`
.search-container {
	position: absolute;
	top: 10px;
	left: 10px;
	width: 200px;
	z-index: 1000;
}
.search-input {
	width: 100%;
	padding: 8px 12px;
	border: 1px solid #555;
	border-radius: 4px;
	background-color: rgba(0, 0, 0, 0.8);
	color: white;
	font-size: 14px;
	outline: none;
	transition: border-color 0.3s;
}
.search-input:focus {
	border-color: #4CAF50;
}
.search-dropdown {
	overflow-y: auto;
	max-height: 300px;
	background-color: rgba(0, 0, 0, 0.95);
	border: 1px solid #555;
	border-top: none;
	border-radius: 0 0 4px 4px;
	margin-top: -1px;
}
.search-option {
	padding: 8px 12px;
	cursor: pointer;
	border-bottom: 0.5px solid #444;
	color: white;
	transition: background-color 0.2s;
}
.search-option:hover {
	background-color: #333;
}
.search-option.selected {
	background-color: #4CAF50;
}
`)

// View is what a surface displays.
type View struct {
	Text        string
	Placeholder string
	// Options are the rendered entries, already capped.
	Options   []Option
	Highlight int
	Open      bool
}

// Node renders the whole widget. h may be nil, in which case no handlers are
// attached (server-side rendering).
func (v View) Node(h Events) *vdom.VNode {
	b := vdom.Div().
		ID(ContainerID).
		Class(Styles.Class("search-container")).
		Children(v.InputNode(h), v.DropdownNode(h))
	if h != nil {
		b.On("focusout", h.FocusOut)
	}
	return b.Build()
}

// InputNode renders the text input.
func (v View) InputNode(h Events) *vdom.VNode {
	b := vdom.Input().
		ID(InputID).
		Type("text").
		Class(Styles.Class("search-input")).
		Value(v.Text).
		Placeholder(v.Placeholder).
		Autocomplete("off")
	if h != nil {
		b.OnInput(h.Input).
			On("focus", h.Focus).
			On("keydown", h.KeyDown)
	}
	return b.Build()
}

// DropdownNode renders the option list. A closed dropdown is kept in the
// tree but not displayed.
func (v View) DropdownNode(h Events) *vdom.VNode {
	b := vdom.Div().
		ID(DropdownID).
		Class(Styles.Class("search-dropdown")).
		TabIndex(0).
		Children(v.OptionNodes(h)...)
	if !v.Open {
		b.Style("display: none")
	}
	return b.Build()
}

// OptionNodes renders one entry per visible option.
func (v View) OptionNodes(h Events) []*vdom.VNode {
	nodes := make([]*vdom.VNode, len(v.Options))
	for i, opt := range v.Options {
		classes := []string{Styles.Class("search-option")}
		if i == v.Highlight {
			classes = append(classes, Styles.Class("selected"))
		}
		b := vdom.Div().
			Key(string(opt.Value)).
			Class(classes...).
			Data("index", strconv.Itoa(i)).
			Text(opt.Label)
		if h != nil {
			idx := i
			b.OnClick(func() { h.Click(idx) })
		}
		nodes[i] = b.Build()
	}
	return nodes
}

// Stylesheet returns the widget CSS.
func Stylesheet() string { return Styles.CSS }
