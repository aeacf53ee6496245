// Package html renders VNode trees to HTML for server-side rendering and
// provides the HTML surface the search widget renders into on the server.
package html

import (
	"fmt"
	"html"
	"io"
	"sort"
	"strings"

	"github.com/recera/famtree/pkg/vdom"
)

// voidElements are HTML elements that cannot have children
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// booleanAttributes are HTML attributes that are boolean flags
var booleanAttributes = map[string]bool{
	"checked":   true,
	"disabled":  true,
	"readonly":  true,
	"required":  true,
	"selected":  true,
	"defer":     true,
	"async":     true,
	"hidden":    true,
	"autofocus": true,
}

// Renderer writes VNodes as HTML. Attributes are emitted in name order so
// output is stable.
type Renderer struct {
	w   io.Writer
	err error
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Render writes node and returns the first write error.
func (r *Renderer) Render(node *vdom.VNode) error {
	r.renderNode(node, false)
	return r.err
}

func (r *Renderer) write(s string) {
	if r.err != nil {
		return
	}
	_, r.err = io.WriteString(r.w, s)
}

func (r *Renderer) renderNode(node *vdom.VNode, raw bool) {
	if node == nil || r.err != nil {
		return
	}

	switch node.Kind {
	case vdom.KindText:
		if raw {
			r.write(node.Text)
		} else {
			r.write(html.EscapeString(node.Text))
		}
	case vdom.KindElement:
		r.renderElement(node)
	case vdom.KindFragment:
		for i := range node.Kids {
			r.renderNode(&node.Kids[i], raw)
		}
	}
}

func (r *Renderer) renderElement(node *vdom.VNode) {
	r.write("<")
	r.write(node.Tag)

	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		if key == "key" || vdom.IsEventProp(key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := node.Props[key]
		if booleanAttributes[key] {
			if v, ok := value.(bool); ok && v {
				r.write(" ")
				r.write(key)
			}
			continue
		}
		if value == nil {
			continue
		}

		s := fmt.Sprintf("%v", value)
		// Refuse script URLs in links and sources.
		if (key == "href" || key == "src") && strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "javascript:") {
			s = "#"
		}
		r.write(" ")
		r.write(key)
		r.write(`="`)
		r.write(html.EscapeString(s))
		r.write(`"`)
	}
	r.write(">")

	if voidElements[node.Tag] {
		return
	}

	// script and style content is not escaped
	raw := node.Tag == "script" || node.Tag == "style"
	for i := range node.Kids {
		r.renderNode(&node.Kids[i], raw)
	}

	r.write("</")
	r.write(node.Tag)
	r.write(">")
}

// RenderToString renders node to a string.
func RenderToString(node *vdom.VNode) (string, error) {
	var buf strings.Builder
	if err := NewRenderer(&buf).Render(node); err != nil {
		return "", err
	}
	return buf.String(), nil
}
