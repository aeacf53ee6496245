package vdom

import "strings"

// ElementBuilder builds element nodes fluently.
type ElementBuilder struct {
	tag   string
	props Props
	kids  []*VNode
}

// El starts building an element with the given tag.
func El(tag string) *ElementBuilder {
	return &ElementBuilder{tag: tag, props: Props{}}
}

// Div starts a div element
func Div() *ElementBuilder { return El("div") }

// Span starts a span element
func Span() *ElementBuilder { return El("span") }

// Input starts an input element
func Input() *ElementBuilder { return El("input") }

// ID sets the id attribute
func (b *ElementBuilder) ID(id string) *ElementBuilder {
	b.props["id"] = id
	return b
}

// Class appends class names, skipping empty ones
func (b *ElementBuilder) Class(names ...string) *ElementBuilder {
	var parts []string
	if cur, ok := b.props["class"].(string); ok && cur != "" {
		parts = append(parts, cur)
	}
	for _, n := range names {
		if n != "" {
			parts = append(parts, n)
		}
	}
	if len(parts) > 0 {
		b.props["class"] = strings.Join(parts, " ")
	}
	return b
}

// Style sets the inline style attribute
func (b *ElementBuilder) Style(style string) *ElementBuilder {
	b.props["style"] = style
	return b
}

// Attr sets an arbitrary attribute
func (b *ElementBuilder) Attr(key string, value any) *ElementBuilder {
	b.props[key] = value
	return b
}

// Data sets a data-* attribute
func (b *ElementBuilder) Data(key, value string) *ElementBuilder {
	b.props["data-"+key] = value
	return b
}

// Key sets the reconciliation key
func (b *ElementBuilder) Key(key string) *ElementBuilder {
	b.props["key"] = key
	return b
}

// Type sets the type attribute
func (b *ElementBuilder) Type(t string) *ElementBuilder {
	b.props["type"] = t
	return b
}

// Value sets the value attribute
func (b *ElementBuilder) Value(value string) *ElementBuilder {
	b.props["value"] = value
	return b
}

// Placeholder sets the placeholder attribute
func (b *ElementBuilder) Placeholder(placeholder string) *ElementBuilder {
	if placeholder != "" {
		b.props["placeholder"] = placeholder
	}
	return b
}

// Autocomplete sets the autocomplete attribute
func (b *ElementBuilder) Autocomplete(value string) *ElementBuilder {
	b.props["autocomplete"] = value
	return b
}

// TabIndex sets the tabindex attribute
func (b *ElementBuilder) TabIndex(i int) *ElementBuilder {
	b.props["tabindex"] = i
	return b
}

// On attaches an event handler, e.g. On("click", fn)
func (b *ElementBuilder) On(event string, handler any) *ElementBuilder {
	if handler == nil {
		return b
	}
	b.props[EventProp(event)] = handler
	return b
}

// OnClick attaches a click handler
func (b *ElementBuilder) OnClick(handler func()) *ElementBuilder {
	if handler == nil {
		return b
	}
	return b.On("click", handler)
}

// OnInput attaches an input handler receiving the current value
func (b *ElementBuilder) OnInput(handler func(string)) *ElementBuilder {
	if handler == nil {
		return b
	}
	return b.On("input", handler)
}

// Text appends a text child
func (b *ElementBuilder) Text(text string) *ElementBuilder {
	b.kids = append(b.kids, NewText(text))
	return b
}

// Children appends child nodes
func (b *ElementBuilder) Children(kids ...*VNode) *ElementBuilder {
	b.kids = append(b.kids, kids...)
	return b
}

// Build returns the finished node
func (b *ElementBuilder) Build() *VNode {
	return NewElement(b.tag, b.props, b.kids...)
}
