// Package vdom describes UI trees as plain values so the same widget can be
// rendered to HTML on the server, to DOM nodes in the browser and inspected
// in tests.
package vdom

import (
	"fmt"
	"strings"
)

// VKind represents the type of virtual node
type VKind uint8

const (
	// KindElement represents a DOM element node
	KindElement VKind = iota
	// KindText represents a text node
	KindText
	// KindFragment represents a fragment (multiple children without parent)
	KindFragment
)

// Props represents the properties/attributes of a VNode.
// Keys starting with "on" hold event handlers.
type Props map[string]any

// VNode represents a virtual DOM node.
// Once built it should not be modified.
type VNode struct {
	Kind VKind

	// Tag is the element tag name, only used when Kind == KindElement
	Tag string

	Props Props
	Kids  []VNode

	// Key is used to identify list entries; empty means no key
	Key string

	// Text content, only used when Kind == KindText
	Text string
}

// NewElement creates a new element VNode
func NewElement(tag string, props Props, children ...*VNode) *VNode {
	kids := make([]VNode, 0, len(children))
	for _, child := range children {
		if child != nil {
			kids = append(kids, *child)
		}
	}
	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: props,
		Kids:  kids,
	}
	if key, ok := props["key"].(string); ok {
		node.Key = key
	}
	return node
}

// NewText creates a new text VNode
func NewText(text string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: text,
	}
}

// NewFragment creates a new fragment VNode
func NewFragment(children ...*VNode) *VNode {
	kids := make([]VNode, 0, len(children))
	for _, child := range children {
		if child != nil {
			kids = append(kids, *child)
		}
	}
	return &VNode{
		Kind: KindFragment,
		Kids: kids,
	}
}

// GetKey returns the key of this node
func (v VNode) GetKey() string {
	if v.Key != "" {
		return v.Key
	}
	if key, ok := v.Props["key"].(string); ok {
		return key
	}
	return ""
}

// Attr returns an attribute formatted as a string, or "" when unset.
func (v VNode) Attr(key string) string {
	val, ok := v.Props[key]
	if !ok || val == nil {
		return ""
	}
	return fmt.Sprintf("%v", val)
}

// HasClass reports whether the class attribute lists name.
func (v VNode) HasClass(name string) bool {
	for _, c := range strings.Fields(v.Attr("class")) {
		if c == name {
			return true
		}
	}
	return false
}

// Handler returns the handler attached for event ("click", "keydown"...),
// or nil.
func (v VNode) Handler(event string) any {
	return v.Props[EventProp(event)]
}

// EventProp returns the prop name a handler for event is stored under.
func EventProp(event string) string {
	if event == "" {
		return ""
	}
	return "on" + strings.ToUpper(event[:1]) + event[1:]
}

// TextContent concatenates the text of every descendant text node.
func (v VNode) TextContent() string {
	if v.Kind == KindText {
		return v.Text
	}
	var b strings.Builder
	for i := range v.Kids {
		b.WriteString(v.Kids[i].TextContent())
	}
	return b.String()
}

// Find returns the first node in depth-first order for which match is true.
func (v *VNode) Find(match func(*VNode) bool) *VNode {
	if v == nil {
		return nil
	}
	if match(v) {
		return v
	}
	for i := range v.Kids {
		if found := v.Kids[i].Find(match); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every node for which match is true, depth-first.
func (v *VNode) FindAll(match func(*VNode) bool) []*VNode {
	if v == nil {
		return nil
	}
	var out []*VNode
	if match(v) {
		out = append(out, v)
	}
	for i := range v.Kids {
		out = append(out, v.Kids[i].FindAll(match)...)
	}
	return out
}

// IsEventProp reports whether a prop key names an event handler.
func IsEventProp(key string) bool {
	return len(key) > 2 && key[0] == 'o' && key[1] == 'n'
}
