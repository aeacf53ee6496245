package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoop_PostRunsInOrder(t *testing.T) {
	loop := NewLoop()
	loop.Start()
	defer loop.Stop()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 100; i++ {
		i := i
		loop.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	loop.Do(func() {})

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 100 {
		t.Fatalf("expected 100 calls, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("call %d ran as %d", i, v)
		}
	}
}

func TestLoop_DoWaits(t *testing.T) {
	loop := NewLoop()
	loop.Start()
	defer loop.Stop()

	ran := false
	if !loop.Do(func() { ran = true }) {
		t.Fatal("Do reported a stopped loop")
	}
	if !ran {
		t.Error("Do returned before the function ran")
	}
}

func TestLoop_AfterFunc(t *testing.T) {
	loop := NewLoop()
	loop.Start()
	defer loop.Stop()

	fired := make(chan struct{})
	loop.AfterFunc(10*time.Millisecond, func() { close(fired) })

	if loop.Pending() != 1 {
		t.Errorf("expected 1 pending task, got %d", loop.Pending())
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("deferred call never ran")
	}
	loop.Do(func() {})
	if loop.Pending() != 0 {
		t.Errorf("expected no pending task, got %d", loop.Pending())
	}
}

func TestLoop_AfterFuncStop(t *testing.T) {
	loop := NewLoop()
	loop.Start()
	defer loop.Stop()

	var calls atomic.Int32
	task := loop.AfterFunc(20*time.Millisecond, func() { calls.Add(1) })
	if !task.Stop() {
		t.Fatal("Stop should report the call as pending")
	}
	if task.Stop() {
		t.Error("second Stop should report false")
	}

	time.Sleep(50 * time.Millisecond)
	loop.Do(func() {})
	if calls.Load() != 0 {
		t.Errorf("cancelled call ran %d times", calls.Load())
	}
}

func TestLoop_StopCancelsPending(t *testing.T) {
	loop := NewLoop()
	loop.Start()

	var calls atomic.Int32
	loop.AfterFunc(10*time.Millisecond, func() { calls.Add(1) })
	loop.Stop()

	time.Sleep(40 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("call ran after Stop")
	}
	if loop.Post(func() {}) {
		t.Error("Post should fail on a stopped loop")
	}
	if loop.IsRunning() {
		t.Error("loop still reports running")
	}
}

func TestLoop_PanicRecovery(t *testing.T) {
	loop := NewLoop()
	var reported atomic.Bool
	loop.SetErrorHandler(func(err interface{}) { reported.Store(true) })
	loop.Start()
	defer loop.Stop()

	loop.Post(func() { panic("boom") })

	ran := false
	loop.Do(func() { ran = true })
	if !ran {
		t.Error("loop stopped after a panic")
	}
	if !reported.Load() {
		t.Error("panic was not reported")
	}
}

func TestManual(t *testing.T) {
	var m Manual
	var order []string

	m.AfterFunc(200*time.Millisecond, func() { order = append(order, "b") })
	m.AfterFunc(100*time.Millisecond, func() { order = append(order, "a") })
	cancelled := m.AfterFunc(150*time.Millisecond, func() { order = append(order, "x") })
	cancelled.Stop()

	m.Advance(99 * time.Millisecond)
	if len(order) != 0 {
		t.Fatalf("nothing should run yet, got %v", order)
	}
	if m.Pending() != 2 {
		t.Errorf("expected 2 pending, got %d", m.Pending())
	}

	m.Advance(200 * time.Millisecond)
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("unexpected order %v", order)
	}
	if m.Pending() != 0 {
		t.Errorf("expected 0 pending, got %d", m.Pending())
	}
}
