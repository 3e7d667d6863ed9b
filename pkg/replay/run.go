package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/recera/pageview/pkg/frame"
	"github.com/recera/pageview/pkg/gesture"
	"github.com/recera/pageview/pkg/viewport"
)

// FrameDuration is the simulated time between frames
const FrameDuration = 16 * time.Millisecond

// maxSettleFrames bounds a settle step
const maxSettleFrames = 100000

// Record is the controller state after one step
type Record struct {
	Step       int                     `json:"step"`
	Label      string                  `json:"label,omitempty"`
	Action     string                  `json:"action"`
	Frames     int                     `json:"frames,omitempty"`
	State      viewport.TransformState `json:"state"`
	Affordance bool                    `json:"affordance"`
}

// simClock is a viewport.Clock driven by simulated frame time
type simClock struct {
	now    time.Duration
	timers []*simTimer
}

type simTimer struct {
	due     time.Duration
	fn      func()
	stopped bool
}

func (t *simTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *simClock) AfterFunc(d time.Duration, fn func()) viewport.Timer {
	t := &simTimer{due: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *simClock) advance(d time.Duration) {
	c.now += d
	var keep []*simTimer
	var due []*simTimer
	for _, t := range c.timers {
		switch {
		case t.stopped:
		case t.due <= c.now:
			due = append(due, t)
		default:
			keep = append(keep, t)
		}
	}
	c.timers = keep
	for _, t := range due {
		t.stopped = true
		t.fn()
	}
}

// Runner executes scripts; it keeps the controller between Run calls so
// scripts can be chained
type Runner struct {
	ctrl   *viewport.Controller
	rec    *gesture.Recognizer
	frames *frame.Manual
	clock  *simClock
	bounds *viewport.StaticBounds
}

// NewRunner creates a runner for the script's geometry and options
func NewRunner(s *Script) (*Runner, error) {
	opts, err := s.Options.ViewportOptions()
	if err != nil {
		return nil, err
	}
	r := &Runner{
		frames: frame.NewManual(),
		clock:  &simClock{},
		bounds: &viewport.StaticBounds{ViewportSize: s.Viewport, ContentSize: s.Content},
	}
	r.ctrl = viewport.New(&opts, viewport.Deps{
		Bounds: r.bounds,
		Frames: r.frames,
		Clock:  r.clock,
	})
	r.rec = gesture.NewRecognizer(r.ctrl, nil)
	r.rec.SetClock(func() time.Time { return time.Unix(0, 0).Add(r.clock.now) })
	return r, nil
}

// Controller exposes the runner's controller
func (r *Runner) Controller() *viewport.Controller { return r.ctrl }

// Run executes a script from a fresh controller
func Run(s *Script) ([]Record, error) {
	r, err := NewRunner(s)
	if err != nil {
		return nil, err
	}
	return r.Run(s.Steps)
}

// Run executes steps and records the state after each
func (r *Runner) Run(steps []Step) ([]Record, error) {
	records := make([]Record, 0, len(steps))
	for i, step := range steps {
		frames, err := r.apply(step)
		if err != nil {
			return records, fmt.Errorf("replay: step %d: %w", i+1, err)
		}
		records = append(records, Record{
			Step:       i + 1,
			Label:      step.Label,
			Action:     step.Action(),
			Frames:     frames,
			State:      r.ctrl.State(),
			Affordance: r.ctrl.AffordanceVisible(),
		})
	}
	return records, nil
}

func (r *Runner) apply(step Step) (int, error) {
	switch {
	case step.Event != nil:
		r.rec.Handle(*step.Event)
	case step.Zoom != nil:
		r.ctrl.SetZoom(*step.Zoom, step.At)
	case step.Pinch != nil:
		r.ctrl.HandlePinch(*step.Pinch, step.At)
	case step.Key != "":
		r.rec.Handle(gesture.Event{Kind: gesture.Key, KeyName: step.Key})
	case step.Toggle:
		r.ctrl.ToggleZoom(step.At)
	case step.Reset:
		r.ctrl.Reset()
	case step.Frames > 0:
		for i := 0; i < step.Frames; i++ {
			r.tick()
		}
		return step.Frames, nil
	case step.Settle:
		n := 0
		for r.frames.Pending() > 0 {
			if n >= maxSettleFrames {
				return n, fmt.Errorf("momentum did not settle after %d frames", n)
			}
			r.tick()
			n++
		}
		return n, nil
	case step.Resize != nil:
		if step.Resize.Viewport != nil {
			r.bounds.ViewportSize = *step.Resize.Viewport
		}
		if step.Resize.Content != nil {
			r.bounds.ContentSize = *step.Resize.Content
		}
		r.ctrl.Resize()
	default:
		return 0, ErrEmptyStep
	}
	return 0, nil
}

func (r *Runner) tick() {
	r.clock.advance(FrameDuration)
	r.frames.Step()
}

// WriteJSON writes records as indented JSON
func WriteJSON(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteText writes records as an aligned table
func WriteText(w io.Writer, records []Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tACTION\tSCALE\tPAN\tVELOCITY\tPHASE\tRESET")
	for _, rec := range records {
		action := rec.Action
		if rec.Label != "" {
			action += " (" + rec.Label + ")"
		}
		if rec.Frames > 0 {
			action += fmt.Sprintf(" x%d", rec.Frames)
		}
		st := rec.State
		fmt.Fprintf(tw, "%d\t%s\t%.3f\t%.1f,%.1f\t%.2f,%.2f\t%s\t%v\n",
			rec.Step, action, st.Scale, st.PanX, st.PanY, st.VelocityX, st.VelocityY, st.Phase, rec.Affordance)
	}
	return tw.Flush()
}
