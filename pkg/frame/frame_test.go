package frame

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestManual_StepRunsPendingFrames(t *testing.T) {
	m := NewManual()

	var order []int
	m.RequestFrame(func() { order = append(order, 1) })
	m.RequestFrame(func() { order = append(order, 2) })

	if m.Pending() != 2 {
		t.Fatalf("Expected 2 pending, got %d", m.Pending())
	}
	if n := m.Step(); n != 2 {
		t.Errorf("Expected 2 callbacks, got %d", n)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("Expected callbacks in request order, got %v", order)
	}
	if m.Pending() != 0 {
		t.Errorf("Expected nothing pending, got %d", m.Pending())
	}
}

func TestManual_RescheduleGoesToNextFrame(t *testing.T) {
	m := NewManual()

	count := 0
	var loop func()
	loop = func() {
		count++
		if count < 3 {
			m.RequestFrame(loop)
		}
	}
	m.RequestFrame(loop)

	m.Step()
	if count != 1 {
		t.Fatalf("Expected one run per step, got %d", count)
	}
	if frames := m.Run(0); frames != 2 {
		t.Errorf("Expected 2 more frames, got %d", frames)
	}
	if count != 3 {
		t.Errorf("Expected 3 runs, got %d", count)
	}
}

func TestManual_Cancel(t *testing.T) {
	m := NewManual()

	ran := false
	h := m.RequestFrame(func() { ran = true })
	m.Cancel(h)
	m.Cancel(h)
	m.Cancel(0)

	if m.Step() != 0 || ran {
		t.Error("cancelled frame ran")
	}
}

func TestManual_CancelWithinSameFrame(t *testing.T) {
	m := NewManual()

	var second Handle
	secondRan := false
	m.RequestFrame(func() { m.Cancel(second) })
	second = m.RequestFrame(func() { secondRan = true })

	if n := m.Step(); n != 1 {
		t.Errorf("Expected 1 callback, got %d", n)
	}
	if secondRan {
		t.Error("frame cancelled by an earlier callback still ran")
	}
}

func TestManual_RunLimit(t *testing.T) {
	m := NewManual()
	var loop func()
	loop = func() { m.RequestFrame(loop) }
	m.RequestFrame(loop)

	if frames := m.Run(5); frames != 5 {
		t.Errorf("Expected 5 frames, got %d", frames)
	}
	if m.Pending() != 1 {
		t.Errorf("Expected the loop to remain scheduled, got %d", m.Pending())
	}
}

func TestManual_PanicRecovery(t *testing.T) {
	m := NewManual()

	var got string
	m.SetErrorHandler(func(err interface{}) { got, _ = err.(string) })

	after := false
	m.RequestFrame(func() { panic("boom") })
	m.RequestFrame(func() { after = true })
	m.Step()

	if !strings.Contains(got, "boom") {
		t.Errorf("Expected panic message, got %q", got)
	}
	if !after {
		t.Error("callback after the panicking one did not run")
	}
}

func TestTicker_FiresOncePerRequest(t *testing.T) {
	tk := NewTicker(5*time.Millisecond, nil)
	defer tk.Stop()

	var runs atomic.Int32
	done := make(chan struct{})
	var loop func()
	loop = func() {
		if runs.Add(1) < 3 {
			tk.RequestFrame(loop)
			return
		}
		close(done)
	}
	tk.RequestFrame(loop)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker did not run three frames")
	}

	// Nothing pending: the clock must stay idle
	time.Sleep(30 * time.Millisecond)
	if got := runs.Load(); got != 3 {
		t.Errorf("Expected 3 runs, got %d", got)
	}
}

func TestTicker_PostsToExecutor(t *testing.T) {
	posted := make(chan func(), 1)
	tk := NewTicker(time.Millisecond, func(fn func()) { posted <- fn })
	defer tk.Stop()

	ran := false
	tk.RequestFrame(func() { ran = true })

	select {
	case fn := <-posted:
		if ran {
			t.Fatal("frame ran before the executor")
		}
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("no frame posted")
	}
	if !ran {
		t.Error("posted frame did not run the callback")
	}
}

func TestTicker_CancelDisarms(t *testing.T) {
	tk := NewTicker(10*time.Millisecond, nil)
	defer tk.Stop()

	var mu sync.Mutex
	ran := false
	h := tk.RequestFrame(func() {
		mu.Lock()
		ran = true
		mu.Unlock()
	})
	tk.Cancel(h)
	time.Sleep(40 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if ran {
		t.Error("cancelled frame ran")
	}
	if tk.Pending() != 0 {
		t.Errorf("Expected nothing pending, got %d", tk.Pending())
	}
}

func TestTicker_Stop(t *testing.T) {
	tk := NewTicker(5*time.Millisecond, nil)
	var runs atomic.Int32
	tk.RequestFrame(func() { runs.Add(1) })
	tk.Stop()
	tk.RequestFrame(func() { runs.Add(1) })
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != 0 {
		t.Errorf("Expected no runs after Stop, got %d", runs.Load())
	}
}
