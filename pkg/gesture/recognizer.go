package gesture

import (
	"math"
	"time"

	"github.com/recera/pageview/pkg/viewport"
)

// Target receives recognized gestures. *viewport.Controller implements it.
type Target interface {
	BeginDrag(p viewport.Point)
	UpdateDrag(p viewport.Point)
	EndDrag()
	CancelDrag()
	HandleWheel(deltaY float64, p viewport.Point, modifier bool) bool
	HandlePinch(ratio float64, center *viewport.Point)
	ToggleZoom(at *viewport.Point)
	ZoomIn()
	ZoomOut()
	Reset()
}

var _ Target = (*viewport.Controller)(nil)

// Options tunes tap recognition
type Options struct {
	DoubleTapWindow time.Duration // default 300ms
	DoubleTapSlop   float64       // default 24px
}

// DefaultOptions returns the default tap tuning
func DefaultOptions() Options {
	return Options{
		DoubleTapWindow: 300 * time.Millisecond,
		DoubleTapSlop:   24,
	}
}

func (o *Options) withDefaults() Options {
	d := DefaultOptions()
	if o == nil {
		return d
	}
	if o.DoubleTapWindow > 0 {
		d.DoubleTapWindow = o.DoubleTapWindow
	}
	if o.DoubleTapSlop > 0 {
		d.DoubleTapSlop = o.DoubleTapSlop
	}
	return d
}

type mode uint8

const (
	modeNone mode = iota
	modeMouse
	modeTouchDrag
	modePinch
)

type tap struct {
	pos   viewport.Point
	at    time.Time
	valid bool
}

// Recognizer is a per-viewer input state machine. Like the controller it
// drives, it must only be used from one goroutine.
type Recognizer struct {
	target Target
	opts   Options
	now    func() time.Time

	mode     mode
	prevDist float64

	// candidate is the current single-finger touch while it still
	// qualifies as a tap; lastTap is the previous completed tap
	candidate tap
	lastTap   tap
}

// NewRecognizer creates a recognizer for target
func NewRecognizer(target Target, opts *Options) *Recognizer {
	return &Recognizer{
		target: target,
		opts:   opts.withDefaults(),
		now:    time.Now,
	}
}

// SetClock replaces the time source used for double tap detection
func (r *Recognizer) SetClock(now func() time.Time) {
	r.now = now
}

// Handle feeds one event and reports whether it was consumed. A wheel event
// that is not consumed may be used by the host for scrolling.
func (r *Recognizer) Handle(ev Event) bool {
	switch ev.Kind {
	case PointerDown:
		if ev.Button != 0 {
			return false
		}
		r.mode = modeMouse
		r.target.BeginDrag(ev.Point())
	case PointerMove:
		if r.mode != modeMouse {
			return false
		}
		r.target.UpdateDrag(ev.Point())
	case PointerUp:
		if r.mode != modeMouse {
			return false
		}
		r.mode = modeNone
		r.target.EndDrag()
	case PointerCancel:
		if r.mode != modeMouse {
			return false
		}
		r.mode = modeNone
		r.target.CancelDrag()
	case TouchStart:
		r.touchStart(ev.Touches)
	case TouchMove:
		r.touchMove(ev.Touches)
	case TouchEnd:
		r.touchEnd(ev.Touches)
	case TouchCancel:
		if r.mode == modeTouchDrag {
			r.target.CancelDrag()
		}
		r.mode = modeNone
		r.candidate = tap{}
	case Wheel:
		return r.target.HandleWheel(ev.DeltaY, ev.Point(), ev.Modifier)
	case DoubleClick:
		p := ev.Point()
		r.target.ToggleZoom(&p)
	case Key:
		return r.key(ev.KeyName)
	default:
		return false
	}
	return true
}

func (r *Recognizer) key(name string) bool {
	switch name {
	case "+", "=":
		r.target.ZoomIn()
	case "-", "_":
		r.target.ZoomOut()
	case "0", "Escape", "escape", "esc":
		r.target.Reset()
	case "z", "Z":
		r.target.ToggleZoom(nil)
	default:
		return false
	}
	return true
}

func (r *Recognizer) touchStart(touches []viewport.Point) {
	switch {
	case len(touches) == 1:
		r.mode = modeTouchDrag
		r.candidate = tap{pos: touches[0], at: r.now(), valid: true}
		r.target.BeginDrag(touches[0])
	case len(touches) >= 2:
		if r.mode == modeTouchDrag {
			r.target.CancelDrag()
		}
		r.mode = modePinch
		r.candidate = tap{}
		r.lastTap = tap{}
		r.prevDist = distance(touches[0], touches[1])
	}
}

func (r *Recognizer) touchMove(touches []viewport.Point) {
	switch {
	case r.mode == modeTouchDrag && len(touches) >= 1:
		if r.candidate.valid && distance(touches[0], r.candidate.pos) > r.opts.DoubleTapSlop {
			r.candidate = tap{}
		}
		r.target.UpdateDrag(touches[0])
	case r.mode == modePinch && len(touches) >= 2:
		d := distance(touches[0], touches[1])
		// Coincident fingers give no usable ratio; skip the sample
		if r.prevDist > 0 && d > 0 {
			center := midpoint(touches[0], touches[1])
			r.target.HandlePinch(d/r.prevDist, &center)
		}
		r.prevDist = d
	}
}

func (r *Recognizer) touchEnd(remaining []viewport.Point) {
	switch {
	case len(remaining) == 0:
		if r.mode == modeTouchDrag {
			r.target.EndDrag()
			r.finishTap()
		}
		r.mode = modeNone
	case len(remaining) == 1 && r.mode == modePinch:
		// Continue as a drag with the finger left down
		r.mode = modeTouchDrag
		r.target.BeginDrag(remaining[0])
	case len(remaining) >= 2 && r.mode == modePinch:
		r.prevDist = distance(remaining[0], remaining[1])
	}
}

func (r *Recognizer) finishTap() {
	c := r.candidate
	r.candidate = tap{}
	if !c.valid {
		r.lastTap = tap{}
		return
	}
	now := r.now()
	last := r.lastTap
	if last.valid && now.Sub(last.at) <= r.opts.DoubleTapWindow && distance(c.pos, last.pos) <= r.opts.DoubleTapSlop {
		r.lastTap = tap{}
		at := c.pos
		r.target.ToggleZoom(&at)
		return
	}
	r.lastTap = tap{pos: c.pos, at: now, valid: true}
}

func distance(a, b viewport.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func midpoint(a, b viewport.Point) viewport.Point {
	return viewport.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
