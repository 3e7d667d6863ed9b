package frame

import (
	"sync"
	"time"
)

// Ticker is a Scheduler for hosts without a display refresh signal. A
// frame fires one interval after the first request and the clock is
// disarmed whenever nothing is pending.
type Ticker struct {
	q        queue
	interval time.Duration
	post     func(fn func())

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// DefaultInterval is roughly one 60Hz display frame
const DefaultInterval = 16 * time.Millisecond

// NewTicker creates a ticker scheduler. Frames are handed to post so they
// run on the host's event loop; a nil post runs them on the timer goroutine.
func NewTicker(interval time.Duration, post func(fn func())) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{interval: interval, post: post}
}

// SetErrorHandler sets the handler for panicking callbacks
func (t *Ticker) SetErrorHandler(h ErrorHandler) {
	t.q.mu.Lock()
	t.q.onError = h
	t.q.mu.Unlock()
}

// RequestFrame implements Scheduler
func (t *Ticker) RequestFrame(fn func()) Handle {
	h := t.q.add(fn)
	t.arm()
	return h
}

// Cancel implements Scheduler
func (t *Ticker) Cancel(h Handle) {
	if h == 0 {
		return
	}
	if t.q.remove(h) == 0 {
		t.disarm()
	}
}

// Pending returns the number of callbacks waiting for the next frame
func (t *Ticker) Pending() int {
	return t.q.len()
}

// Stop disarms the clock and drops pending frames
func (t *Ticker) Stop() {
	t.mu.Lock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
	t.q.mu.Lock()
	t.q.pending = nil
	t.q.mu.Unlock()
}

func (t *Ticker) arm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.timer != nil {
		return
	}
	t.timer = time.AfterFunc(t.interval, t.fire)
}

func (t *Ticker) disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Ticker) fire() {
	t.mu.Lock()
	t.timer = nil
	stopped := t.stopped
	t.mu.Unlock()
	if stopped {
		return
	}
	run := func() {
		n := t.q.runFrame()
		if debugLog != nil && n > 0 {
			debugLog("[Frame] tick ran", n, "callbacks")
		}
	}
	if t.post != nil {
		t.post(run)
		return
	}
	run()
}
