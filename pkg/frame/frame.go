// Package frame provides the "next frame" capability used by animation
// loops. A loop requests exactly one frame at a time and reschedules itself
// from inside the callback, so it never runs on a free running clock.
package frame

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Handle identifies a requested frame. The zero Handle is never issued.
type Handle uint64

// Scheduler runs callbacks on the next display frame
type Scheduler interface {
	// RequestFrame schedules fn for the next frame
	RequestFrame(fn func()) Handle
	// Cancel suppresses a pending frame. Cancelling a frame that already
	// ran, or the zero Handle, is a no-op.
	Cancel(h Handle)
}

// ErrorHandler receives panics raised by frame callbacks
type ErrorHandler func(err interface{})

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

type entry struct {
	id Handle
	fn func()
}

// queue is the pending frame list shared by the schedulers
type queue struct {
	mu      sync.Mutex
	nextID  Handle
	pending []entry
	running map[Handle]bool // batch of the frame currently executing
	onError ErrorHandler
}

func (q *queue) add(fn func()) Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	q.pending = append(q.pending, entry{id: q.nextID, fn: fn})
	return q.nextID
}

// remove drops h from the pending list or from the executing batch and
// returns how many frames are still pending
func (q *queue) remove(h Handle) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.pending {
		if e.id == h {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return len(q.pending)
		}
	}
	delete(q.running, h)
	return len(q.pending)
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// runFrame executes every frame requested so far. Frames requested while
// it runs belong to the following frame.
func (q *queue) runFrame() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.running = make(map[Handle]bool, len(batch))
	for _, e := range batch {
		q.running[e.id] = true
	}
	q.mu.Unlock()

	ran := 0
	for _, e := range batch {
		q.mu.Lock()
		live := q.running[e.id]
		delete(q.running, e.id)
		q.mu.Unlock()
		if !live {
			continue
		}
		q.call(e)
		ran++
	}

	q.mu.Lock()
	q.running = nil
	q.mu.Unlock()
	return ran
}

// call runs one callback with panic recovery
func (q *queue) call(e entry) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("frame %d panic: %v\n%s", e.id, r, debug.Stack())
			if debugLog != nil {
				debugLog("[Frame]", msg)
			}
			if q.onError != nil {
				q.onError(msg)
			}
		}
	}()
	e.fn()
}
