//go:build js && wasm

package dom

import (
	"fmt"
	"syscall/js"

	"github.com/recera/famtree/pkg/search"
)

// Host mounts widgets under elements of the current document.
type Host struct {
	document js.Value
}

// NewHost returns a host for the current document.
func NewHost() *Host {
	return &Host{document: js.Global().Get("document")}
}

// Mount implements search.Host. selector goes through querySelector.
func (h *Host) Mount(selector string) (search.Surface, error) {
	target := h.document.Call("querySelector", selector)
	if target.IsNull() || target.IsUndefined() {
		return nil, fmt.Errorf("%w: %q", search.ErrMissingMount, selector)
	}

	// a server-rendered widget is replaced
	if old := target.Call("querySelector", "#"+search.ContainerID); !old.IsNull() {
		old.Call("remove")
	}

	s := &Surface{document: h.document, shell: NewApplier(), options: NewApplier()}
	s.container = s.shell.Create(search.View{Highlight: search.NoHighlight}.Node(relay{s}))
	s.input = s.container.Call("querySelector", "#"+search.InputID)
	s.dropdown = s.container.Call("querySelector", "#"+search.DropdownID)
	s.shell.Listen(s.dropdown, "wheel", func(ev js.Value) { ev.Call("stopPropagation") })
	target.Call("appendChild", s.container)
	return s, nil
}

// Surface is a mounted widget. Option entries are rebuilt on every render.
type Surface struct {
	document  js.Value
	container js.Value
	input     js.Value
	dropdown  js.Value

	shell   *Applier
	options *Applier
	events  search.Events
	removed bool
}

// Bind implements search.Surface.
func (s *Surface) Bind(h search.Events) { s.events = h }

// Render implements search.Surface.
func (s *Surface) Render(v search.View) {
	if s.removed {
		return
	}
	if s.input.Get("value").String() != v.Text {
		s.input.Set("value", v.Text)
	}
	s.input.Set("placeholder", v.Placeholder)

	s.dropdown.Set("innerHTML", "")
	s.options.Release()
	for _, n := range v.OptionNodes(relay{s}) {
		s.dropdown.Call("appendChild", s.options.Create(n))
	}
	if v.Open {
		s.dropdown.Get("style").Set("display", "block")
	} else {
		s.dropdown.Get("style").Set("display", "none")
	}
}

// Focus implements search.Surface.
func (s *Surface) Focus() {
	if !s.removed {
		s.input.Call("focus")
	}
}

// Blur implements search.Surface.
func (s *Surface) Blur() {
	if !s.removed {
		s.input.Call("blur")
	}
}

// HasFocus reports whether the active element is inside the widget.
func (s *Surface) HasFocus() bool {
	if s.removed {
		return false
	}
	active := s.document.Get("activeElement")
	if active.IsNull() || active.IsUndefined() {
		return false
	}
	return s.container.Call("contains", active).Bool()
}

// Remove implements search.Surface.
func (s *Surface) Remove() {
	if s.removed {
		return
	}
	s.removed = true
	s.container.Call("remove")
	s.options.Release()
	s.shell.Release()
}

// relay forwards DOM events to the bound controller. Elements are created
// at mount time, before Bind.
type relay struct{ s *Surface }

func (r relay) Input(text string) {
	if r.s.events != nil {
		r.s.events.Input(text)
	}
}

func (r relay) Focus() {
	if r.s.events != nil {
		r.s.events.Focus()
	}
}

func (r relay) FocusOut() {
	if r.s.events != nil {
		r.s.events.FocusOut()
	}
}

func (r relay) KeyDown(key string) bool {
	if r.s.events == nil {
		return false
	}
	return r.s.events.KeyDown(key)
}

func (r relay) Click(i int) {
	if r.s.events != nil {
		r.s.events.Click(i)
	}
}
