package html

import (
	"fmt"
	"strings"
	"sync"

	"github.com/recera/famtree/pkg/search"
)

// Host mounts search widgets onto a fixed set of known mount points, the
// ones the page template declares.
type Host struct {
	mu        sync.Mutex
	selectors map[string]bool
	mounted   map[string]*Surface
}

// NewHost creates a host that accepts the given selectors.
func NewHost(selectors ...string) *Host {
	h := &Host{
		selectors: make(map[string]bool, len(selectors)),
		mounted:   make(map[string]*Surface),
	}
	for _, s := range selectors {
		h.selectors[s] = true
	}
	return h
}

// Mount implements search.Host.
func (h *Host) Mount(selector string) (search.Surface, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.selectors[selector] {
		return nil, fmt.Errorf("%w: %q", search.ErrMissingMount, selector)
	}
	s := &Surface{selector: selector, host: h, view: search.View{Highlight: search.NoHighlight}}
	h.mounted[selector] = s
	return s, nil
}

// Surface returns the widget mounted on selector, or nil.
func (h *Host) Surface(selector string) *Surface {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mounted[selector]
}

func (h *Host) unmount(s *Surface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mounted[s.selector] == s {
		delete(h.mounted, s.selector)
	}
}

// Surface keeps the latest view of a widget and renders it as HTML. Focus is
// whatever the client last reported through SetFocus. A Surface must be used
// from a single goroutine.
type Surface struct {
	selector string
	host     *Host
	events   search.Events
	view     search.View
	focused  bool
	removed  bool
	onRender func(search.View)
}

// Bind implements search.Surface.
func (s *Surface) Bind(h search.Events) { s.events = h }

// Events returns the bound event handler.
func (s *Surface) Events() search.Events { return s.events }

// Render implements search.Surface.
func (s *Surface) Render(v search.View) {
	if s.removed {
		return
	}
	s.view = v
	if s.onRender != nil {
		s.onRender(v)
	}
}

// OnRender registers fn to run after each render.
func (s *Surface) OnRender(fn func(search.View)) { s.onRender = fn }

// Focus implements search.Surface.
func (s *Surface) Focus() { s.focused = true }

// Blur implements search.Surface.
func (s *Surface) Blur() { s.focused = false }

// HasFocus implements search.Surface.
func (s *Surface) HasFocus() bool { return s.focused }

// SetFocus records where the client says focus is.
func (s *Surface) SetFocus(inside bool) { s.focused = inside }

// Remove implements search.Surface.
func (s *Surface) Remove() {
	if s.removed {
		return
	}
	s.removed = true
	s.host.unmount(s)
}

// Removed reports whether the widget was removed.
func (s *Surface) Removed() bool { return s.removed }

// View returns the latest rendered view.
func (s *Surface) View() search.View { return s.view }

// HTML renders the whole widget. A removed widget renders as "".
func (s *Surface) HTML() (string, error) {
	if s.removed {
		return "", nil
	}
	return RenderToString(s.view.Node(nil))
}

// DropdownHTML renders only the option entries.
func (s *Surface) DropdownHTML() (string, error) {
	if s.removed {
		return "", nil
	}
	var buf strings.Builder
	r := NewRenderer(&buf)
	for _, n := range s.view.OptionNodes(nil) {
		if err := r.Render(n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
