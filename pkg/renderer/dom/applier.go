//go:build js && wasm

// Package dom builds browser DOM from VNode trees and hosts the search
// widget on a real page.
package dom

import (
	"fmt"
	"syscall/js"

	"github.com/recera/famtree/pkg/vdom"
)

// Applier creates DOM elements from VNodes and owns the JS callbacks it
// attaches, so they can be released together.
type Applier struct {
	document js.Value
	funcs    []js.Func
}

// NewApplier creates an applier for the current document.
func NewApplier() *Applier {
	return &Applier{document: js.Global().Get("document")}
}

// Create builds the DOM for vnode. Fragments are not supported at the root.
func (a *Applier) Create(vnode *vdom.VNode) js.Value {
	if vnode == nil {
		return js.Undefined()
	}

	switch vnode.Kind {
	case vdom.KindText:
		return a.document.Call("createTextNode", vnode.Text)

	case vdom.KindElement:
		elem := a.document.Call("createElement", vnode.Tag)
		for key, value := range vnode.Props {
			if key == "key" || value == nil {
				continue
			}
			if vdom.IsEventProp(key) {
				a.listen(elem, key, value)
				continue
			}
			setAttribute(elem, key, value)
		}
		for i := range vnode.Kids {
			kid := &vnode.Kids[i]
			if kid.Kind == vdom.KindFragment {
				for j := range kid.Kids {
					elem.Call("appendChild", a.Create(&kid.Kids[j]))
				}
				continue
			}
			if child := a.Create(kid); !child.IsUndefined() {
				elem.Call("appendChild", child)
			}
		}
		return elem

	default:
		return js.Undefined()
	}
}

func setAttribute(elem js.Value, key string, value any) {
	switch key {
	case "class":
		elem.Set("className", fmt.Sprintf("%v", value))
	case "value":
		// the property, not the attribute, is what the input shows
		elem.Set("value", fmt.Sprintf("%v", value))
	case "checked", "selected", "disabled", "readonly", "required", "hidden":
		b, _ := value.(bool)
		elem.Set(key, b)
	default:
		elem.Call("setAttribute", key, fmt.Sprintf("%v", value))
	}
}

// listen attaches a handler stored under an "on..." prop. Supported
// signatures:
//
//	func()
//	func(js.Value)        the raw event
//	func(string)          input value for input/change, key for key events
//	func(string) bool     as above; true cancels the default action
func (a *Applier) listen(elem js.Value, prop string, handler any) {
	event := eventName(prop)

	var fn js.Func
	switch h := handler.(type) {
	case func():
		fn = js.FuncOf(func(this js.Value, args []js.Value) any {
			h()
			return nil
		})
	case func(js.Value):
		fn = js.FuncOf(func(this js.Value, args []js.Value) any {
			if len(args) > 0 {
				h(args[0])
			} else {
				h(js.Undefined())
			}
			return nil
		})
	case func(string):
		fn = js.FuncOf(func(this js.Value, args []js.Value) any {
			h(eventString(event, args))
			return nil
		})
	case func(string) bool:
		fn = js.FuncOf(func(this js.Value, args []js.Value) any {
			if h(eventString(event, args)) && len(args) > 0 {
				args[0].Call("preventDefault")
			}
			return nil
		})
	default:
		return
	}

	elem.Call("addEventListener", event, fn)
	a.funcs = append(a.funcs, fn)
}

// Listen attaches handler for event directly, for listeners that are not
// part of a VNode.
func (a *Applier) Listen(elem js.Value, event string, handler any) {
	a.listen(elem, vdom.EventProp(event), handler)
}

// Release frees every callback created so far. Elements holding them must
// be detached first.
func (a *Applier) Release() {
	for _, fn := range a.funcs {
		fn.Release()
	}
	a.funcs = nil
}

func eventName(prop string) string {
	name := prop[2:]
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

func eventString(event string, args []js.Value) string {
	if len(args) == 0 {
		return ""
	}
	ev := args[0]
	switch event {
	case "input", "change":
		if tgt := ev.Get("target"); tgt.Truthy() {
			return tgt.Get("value").String()
		}
		return ""
	case "keydown", "keyup":
		return ev.Get("key").String()
	default:
		return ev.Get("type").String()
	}
}
