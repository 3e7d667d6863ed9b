package frame

// Manual is a Scheduler whose frames advance only when Step is called.
// Tests use it to single-step animations; hosts use it when the display
// clock lives elsewhere (terminal ticks, frame messages from a client).
type Manual struct {
	q queue
}

// NewManual creates a manual scheduler
func NewManual() *Manual {
	return &Manual{}
}

// SetErrorHandler sets the handler for panicking callbacks
func (m *Manual) SetErrorHandler(h ErrorHandler) {
	m.q.mu.Lock()
	m.q.onError = h
	m.q.mu.Unlock()
}

// RequestFrame implements Scheduler
func (m *Manual) RequestFrame(fn func()) Handle {
	return m.q.add(fn)
}

// Cancel implements Scheduler
func (m *Manual) Cancel(h Handle) {
	if h == 0 {
		return
	}
	m.q.remove(h)
}

// Pending returns the number of callbacks waiting for the next frame
func (m *Manual) Pending() int {
	return m.q.len()
}

// Step runs one frame and returns how many callbacks ran
func (m *Manual) Step() int {
	n := m.q.runFrame()
	if debugLog != nil && n > 0 {
		debugLog("[Frame] manual step ran", n, "callbacks")
	}
	return n
}

// Run steps until nothing is pending or max frames have run (max <= 0
// means no limit). It returns the number of frames stepped.
func (m *Manual) Run(max int) int {
	frames := 0
	for m.Pending() > 0 {
		if max > 0 && frames >= max {
			break
		}
		m.Step()
		frames++
	}
	return frames
}
