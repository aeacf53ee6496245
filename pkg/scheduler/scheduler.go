// Package scheduler serializes UI events and deferred callbacks.
//
// A search widget is driven from a single event loop: keystrokes, clicks and
// the occasional deferred check all run one after another. In the browser
// that loop is the JS event loop. On the server every live session gets its
// own Loop so its controller never sees two events at once.
package scheduler

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Task is a pending deferred call.
type Task interface {
	// Stop cancels the call. It reports whether the call was still pending.
	Stop() bool
}

// Deferrer schedules fn to run once after d.
type Deferrer interface {
	AfterFunc(d time.Duration, fn func()) Task
}

// ErrorHandler receives panics raised by posted functions.
type ErrorHandler func(err interface{})

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Timers defers with time.AfterFunc. The callback runs on its own goroutine,
// which is fine where the runtime is single-threaded (js/wasm).
type Timers struct{}

// AfterFunc implements Deferrer.
func (Timers) AfterFunc(d time.Duration, fn func()) Task {
	return timerTask{time.AfterFunc(d, fn)}
}

type timerTask struct{ t *time.Timer }

func (t timerTask) Stop() bool { return t.t.Stop() }

// Loop runs posted functions one at a time on a dedicated goroutine.
type Loop struct {
	queue   chan func()
	done    chan struct{}
	running atomic.Bool
	stopped atomic.Bool

	mu      sync.Mutex
	tasks   map[uint64]*loopTask
	nextID  uint64
	onError ErrorHandler
}

// NewLoop creates a loop. Call Start before posting.
func NewLoop() *Loop {
	return &Loop{
		queue: make(chan func(), 256),
		done:  make(chan struct{}),
		tasks: make(map[uint64]*loopTask),
	}
}

// SetErrorHandler installs the panic handler. Without one, panics are
// swallowed after being reported to the debug log.
func (l *Loop) SetErrorHandler(h ErrorHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onError = h
}

// Start begins the loop. Calling it twice is harmless.
func (l *Loop) Start() {
	if l.stopped.Load() {
		return
	}
	if l.running.CompareAndSwap(false, true) {
		if debugLog != nil {
			debugLog("[Scheduler] Starting loop")
		}
		go l.run()
	}
}

// Stop ends the loop and cancels every pending deferred call. Functions
// already queued are dropped.
func (l *Loop) Stop() {
	if !l.stopped.CompareAndSwap(false, true) {
		return
	}
	close(l.done)

	l.mu.Lock()
	tasks := l.tasks
	l.tasks = make(map[uint64]*loopTask)
	l.mu.Unlock()

	for _, t := range tasks {
		t.cancel()
	}
}

// IsRunning reports whether the loop accepts work.
func (l *Loop) IsRunning() bool {
	return l.running.Load() && !l.stopped.Load()
}

// Post queues fn. It reports false once the loop is stopped.
func (l *Loop) Post(fn func()) bool {
	if l.stopped.Load() {
		return false
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(fn func()) bool {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

// AfterFunc posts fn to the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Task {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	t := &loopTask{id: l.nextID, loop: l}
	if l.stopped.Load() {
		t.state.Store(taskDone)
		return t
	}
	l.tasks[t.id] = t
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if !t.state.CompareAndSwap(taskPending, taskDone) {
				return
			}
			l.forget(t.id)
			fn()
		})
	})
	return t
}

// Pending returns the number of deferred calls not yet run or cancelled.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

func (l *Loop) forget(id uint64) {
	l.mu.Lock()
	delete(l.tasks, id)
	l.mu.Unlock()
}

func (l *Loop) run() {
	for {
		select {
		case fn := <-l.queue:
			l.exec(fn)
		case <-l.done:
			if debugLog != nil {
				debugLog("[Scheduler] Loop ended")
			}
			return
		}
	}
}

// exec runs fn with panic recovery
func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("scheduler: task panic: %v\n%s", r, debug.Stack())
			if debugLog != nil {
				debugLog(msg)
			}
			l.mu.Lock()
			h := l.onError
			l.mu.Unlock()
			if h != nil {
				h(msg)
			}
		}
	}()
	fn()
}

const (
	taskPending int32 = iota
	taskDone
)

type loopTask struct {
	id    uint64
	loop  *Loop
	timer *time.Timer
	state atomic.Int32
}

func (t *loopTask) Stop() bool {
	if !t.state.CompareAndSwap(taskPending, taskDone) {
		return false
	}
	t.loop.mu.Lock()
	delete(t.loop.tasks, t.id)
	timer := t.timer
	t.loop.mu.Unlock()
	if timer != nil {
		timer.Stop()
	}
	return true
}

func (t *loopTask) cancel() {
	t.state.Store(taskDone)
	if t.timer != nil {
		t.timer.Stop()
	}
}
