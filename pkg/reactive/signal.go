// Package reactive holds observable values. The family-tree client keeps the
// focal person in a State and lets the chart, the URL hash and the card pane
// follow it.
package reactive

import "sync"

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Signal is a readable, observable value.
type Signal[T any] interface {
	Get() T
	// Subscribe calls fn with each new value and returns a function that
	// stops the subscription.
	Subscribe(fn func(T)) (unsubscribe func())
}

// State is a mutable observable value. Subscribers run synchronously on the
// goroutine that changed the value, after the lock is released.
type State[T any] struct {
	mu    sync.RWMutex
	value T

	subsMu sync.Mutex
	nextID uint64
	subs   map[uint64]func(T)
	order  []uint64
}

// NewState creates a state holding initial. Every Set notifies.
func NewState[T any](initial T) *State[T] {
	return &State[T]{value: initial, subs: make(map[uint64]func(T))}
}

// Get returns the current value.
func (s *State[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies subscribers.
func (s *State[T]) Set(value T) {
	s.Update(func(T) T { return value })
}

// Update atomically reads, modifies, and writes the value
func (s *State[T]) Update(fn func(T) T) {
	s.mu.Lock()
	old := s.value
	s.value = fn(old)
	value := s.value
	s.mu.Unlock()

	if debugLog != nil {
		debugLog("[State] changed:", old, "->", value)
	}
	s.notify(value)
}

// Subscribe implements Signal.
func (s *State[T]) Subscribe(fn func(T)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			delete(s.subs, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *State[T]) notify(value T) {
	s.subsMu.Lock()
	fns := make([]func(T), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.subs[id])
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

// Computed derives a value from a source signal. It recomputes when the
// source changes and notifies its own subscribers.
type Computed[S, T any] struct {
	out   *State[T]
	unsub func()
}

// NewComputed creates a derived signal. Call Stop to detach it from src.
func NewComputed[S, T any](src Signal[S], fn func(S) T) *Computed[S, T] {
	c := &Computed[S, T]{out: NewState(fn(src.Get()))}
	c.unsub = src.Subscribe(func(v S) { c.out.Set(fn(v)) })
	return c
}

// Get implements Signal.
func (c *Computed[S, T]) Get() T { return c.out.Get() }

// Subscribe implements Signal.
func (c *Computed[S, T]) Subscribe(fn func(T)) func() { return c.out.Subscribe(fn) }

// Stop detaches the computed value from its source.
func (c *Computed[S, T]) Stop() { c.unsub() }
