package styling

import (
	"strings"
	"sync"
)

// StyleRegistry collects component styles for injection into the page.
type StyleRegistry struct {
	mu     sync.RWMutex
	order  []string
	styles map[string]*ComponentStyle
}

var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *StyleRegistry {
	return &StyleRegistry{styles: make(map[string]*ComponentStyle)}
}

// Register adds a style once; registering the same stylesheet again is a
// no-op.
func (r *StyleRegistry) Register(style *ComponentStyle) {
	if style == nil || style.CSS == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.styles[style.Hash]; ok {
		return
	}
	r.styles[style.Hash] = style
	r.order = append(r.order, style.Hash)
}

// CSS returns every registered stylesheet in registration order.
func (r *StyleRegistry) CSS() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var b strings.Builder
	for _, h := range r.order {
		b.WriteString(r.styles[h].CSS)
		b.WriteString("\n")
	}
	return b.String()
}

// Register adds a component style to the global registry
func Register(style *ComponentStyle) { globalRegistry.Register(style) }

// GetAllCSS returns all globally registered CSS
func GetAllCSS() string { return globalRegistry.CSS() }

// Reset clears the global registry (useful for testing)
func Reset() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.order = nil
	globalRegistry.styles = make(map[string]*ComponentStyle)
}

// StyleWithRegistry creates a ComponentStyle and registers it globally
func StyleWithRegistry(css string) *ComponentStyle {
	style := Style(css)
	Register(style)
	return style
}
