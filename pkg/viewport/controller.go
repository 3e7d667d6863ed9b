// Package viewport implements a gesture-driven zoom/pan controller with
// inertial momentum for a zoomable surface such as a rendered page.
//
// A Controller owns one TransformState. It is not safe for concurrent use:
// all methods, frame callbacks and clock callbacks must run on the host's
// single event loop (see SystemClock.Post and frame.NewTicker).
package viewport

import (
	"sync"

	"github.com/recera/pageview/pkg/frame"
)

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Controller turns zoom, drag and pinch input into a clamped transform
type Controller struct {
	opts Options
	deps Deps

	st          TransformState
	lastPointer Point // latest drag position, used to re-anchor on zoom
	pending     frame.Handle

	affMu      sync.Mutex
	affVisible bool
	affGen     uint64
	affTimer   Timer
}

// New creates a controller at scale 1 with no pan. A nil opts uses
// DefaultOptions.
func New(opts *Options, deps Deps) *Controller {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	c := &Controller{
		opts: opts.withDefaults(),
		deps: deps,
		st:   TransformState{Scale: 1},
	}
	if c.st.Scale < c.opts.MinScale || c.st.Scale > c.opts.MaxScale {
		c.st.Scale = clamp(1, c.opts.MinScale, c.opts.MaxScale)
	}
	return c
}

// Options returns the effective options after defaults
func (c *Controller) Options() Options { return c.opts }

// State returns a snapshot of the transform state
func (c *Controller) State() TransformState { return c.st }

// Phase returns the interaction state
func (c *Controller) Phase() Phase { return c.st.Phase }

// Scale returns the current zoom level
func (c *Controller) Scale() float64 { return c.st.Scale }

// Transform returns the transform last pushed to the surface
func (c *Controller) Transform() Transform {
	return Transform{TranslateX: c.st.PanX, TranslateY: c.st.PanY, Scale: c.st.Scale}
}

// AffordanceVisible reports whether the reset affordance is shown
func (c *Controller) AffordanceVisible() bool {
	c.affMu.Lock()
	defer c.affMu.Unlock()
	return c.affVisible
}

// MaxPan returns the pan limits at the current scale
func (c *Controller) MaxPan() (x, y float64) {
	return c.maxPanAt(c.st.Scale)
}

func (c *Controller) maxPanAt(scale float64) (x, y float64) {
	vp, content := c.sizes()
	return maxPan(content.W, vp.W, scale), maxPan(content.H, vp.H, scale)
}

func (c *Controller) sizes() (viewport, content Size) {
	if c.deps.Bounds == nil {
		return Size{}, Size{}
	}
	return sanitize(c.deps.Bounds.Viewport()), sanitize(c.deps.Bounds.Content())
}

func (c *Controller) center() Point {
	vp, _ := c.sizes()
	return Point{X: vp.W / 2, Y: vp.H / 2}
}

// ScreenToContent maps a viewport point to content coordinates, measured
// from the content's top-left corner at natural size.
func (c *Controller) ScreenToContent(p Point) Point {
	vp, content := c.sizes()
	return Point{
		X: (p.X-vp.W/2-c.st.PanX)/c.st.Scale + content.W/2,
		Y: (p.Y-vp.H/2-c.st.PanY)/c.st.Scale + content.H/2,
	}
}

// ContentToScreen is the inverse of ScreenToContent
func (c *Controller) ContentToScreen(p Point) Point {
	vp, content := c.sizes()
	return Point{
		X: vp.W/2 + c.st.PanX + c.st.Scale*(p.X-content.W/2),
		Y: vp.H/2 + c.st.PanY + c.st.Scale*(p.Y-content.H/2),
	}
}

// SetZoom zooms to target, clamped to [MinScale, MaxScale]. With an anchor
// (viewport coordinates) the content under it stays put; without one the
// viewport centre is the pivot. Non-finite input is ignored.
func (c *Controller) SetZoom(target float64, anchor *Point) {
	if !finite(target) {
		return
	}
	pivotAt := c.center()
	if anchor != nil {
		if !anchor.finite() {
			return
		}
		pivotAt = *anchor
	}
	c.cancelMomentum()

	next := clamp(target, c.opts.MinScale, c.opts.MaxScale)
	if next <= 1 {
		c.st.Scale = next
		c.st.PanX, c.st.PanY = 0, 0
		c.st.VelocityX, c.st.VelocityY = 0, 0
		c.st.Phase = Idle
		c.apply()
		c.hideAffordance()
		return
	}

	center := c.center()
	k := next / c.st.Scale
	panX := pivot(c.st.PanX, pivotAt.X-center.X, k)
	panY := pivot(c.st.PanY, pivotAt.Y-center.Y, k)
	if !finite(k) || !finite(panX) || !finite(panY) {
		return
	}
	c.st.Scale = next
	c.st.PanX, c.st.PanY = panX, panY
	c.clampPan()
	if c.st.Phase == Dragging {
		c.reanchor()
	}
	if debugLog != nil {
		debugLog("[Viewport] zoom", next, "pan", c.st.PanX, c.st.PanY)
	}
	c.apply()
	c.showAffordance()
}

// BeginDrag starts panning from p. It has no effect at scale <= 1.
func (c *Controller) BeginDrag(p Point) {
	if c.st.Scale <= 1 || !p.finite() {
		return
	}
	c.cancelMomentum()
	c.st.Phase = Dragging
	c.st.VelocityX, c.st.VelocityY = 0, 0
	c.lastPointer = p
	c.reanchor()
}

// UpdateDrag moves the pan with the pointer. Velocity is the difference
// between this pan and the previous one, without smoothing.
func (c *Controller) UpdateDrag(p Point) {
	if c.st.Phase != Dragging || !p.finite() {
		return
	}
	c.lastPointer = p
	newX := p.X - c.st.AnchorX
	newY := p.Y - c.st.AnchorY
	c.st.VelocityX = newX - c.st.PanX
	c.st.VelocityY = newY - c.st.PanY
	c.st.PanX, c.st.PanY = newX, newY
	c.clampPan()
	c.apply()
}

// EndDrag releases the drag and starts momentum when the release velocity
// exceeds the threshold.
func (c *Controller) EndDrag() {
	if c.st.Phase != Dragging {
		return
	}
	th := c.opts.MomentumThreshold
	if exceeds(c.st.VelocityX, th) || exceeds(c.st.VelocityY, th) {
		c.st.Phase = Momentum
		if debugLog != nil {
			debugLog("[Viewport] momentum start", c.st.VelocityX, c.st.VelocityY)
		}
		c.schedule()
		return
	}
	c.st.Phase = Idle
	c.st.VelocityX, c.st.VelocityY = 0, 0
}

// CancelDrag leaves the drag without momentum, e.g. when a second finger
// turns the gesture into a pinch.
func (c *Controller) CancelDrag() {
	if c.st.Phase != Dragging {
		return
	}
	c.st.Phase = Idle
	c.st.VelocityX, c.st.VelocityY = 0, 0
}

// HandleWheel zooms one step in (deltaY < 0) or out (deltaY > 0) about p.
// It reports whether the event was used for zooming; when the wheel
// modifier is required and absent the caller may scroll instead.
func (c *Controller) HandleWheel(deltaY float64, p Point, modifier bool) bool {
	if c.opts.RequireWheelModifier && !modifier {
		return false
	}
	if !finite(deltaY) || deltaY == 0 {
		return false
	}
	target := c.st.Scale + c.opts.ZoomStep
	if deltaY > 0 {
		target = c.st.Scale - c.opts.ZoomStep
	}
	c.SetZoom(target, &p)
	return true
}

// HandlePinch scales by ratio, the change in finger distance since the
// previous pinch sample. Zero, negative and non-finite ratios are ignored.
func (c *Controller) HandlePinch(ratio float64, center *Point) {
	if !positive(ratio) {
		return
	}
	c.SetZoom(c.st.Scale*ratio, center)
}

// ToggleZoom switches between scale 1 and ToggleScale, zooming in about at
// when given.
func (c *Controller) ToggleZoom(at *Point) {
	if c.st.Scale > 1 {
		c.Reset()
		return
	}
	c.SetZoom(c.opts.ToggleScale, at)
}

// ZoomIn zooms one keyboard step about the viewport centre
func (c *Controller) ZoomIn() {
	c.SetZoom(c.st.Scale+c.opts.KeyZoomStep, nil)
}

// ZoomOut zooms out one keyboard step about the viewport centre
func (c *Controller) ZoomOut() {
	c.SetZoom(c.st.Scale-c.opts.KeyZoomStep, nil)
}

// Reset returns to scale 1 with no pan, no velocity and no momentum
func (c *Controller) Reset() {
	c.cancelMomentum()
	c.st = TransformState{Scale: clamp(1, c.opts.MinScale, c.opts.MaxScale)}
	c.apply()
	c.hideAffordance()
}

// Resize restores the pan limits after the viewport or content changed size
func (c *Controller) Resize() {
	if c.st.Scale <= 1 {
		c.st.PanX, c.st.PanY = 0, 0
	} else {
		c.clampPan()
	}
	if c.st.Phase == Dragging {
		c.reanchor()
	}
	c.apply()
}

// StepMomentum advances the glide by one frame and reports whether it is
// still running. Hosts without a frame scheduler call it once per frame.
func (c *Controller) StepMomentum() bool {
	if c.st.Phase != Momentum {
		return false
	}
	c.unschedule()
	c.st.PanX += c.st.VelocityX
	c.st.PanY += c.st.VelocityY
	c.st.VelocityX *= c.opts.Decay
	c.st.VelocityY *= c.opts.Decay
	c.clampPan()
	c.apply()

	th := c.opts.MomentumThreshold
	if !exceeds(c.st.VelocityX, th) && !exceeds(c.st.VelocityY, th) {
		c.st.Phase = Idle
		c.st.VelocityX, c.st.VelocityY = 0, 0
		if debugLog != nil {
			debugLog("[Viewport] momentum settled at", c.st.PanX, c.st.PanY)
		}
		return false
	}
	c.schedule()
	return true
}

func (c *Controller) onFrame() {
	c.pending = 0
	c.StepMomentum()
}

func (c *Controller) schedule() {
	if c.deps.Frames == nil || c.pending != 0 {
		return
	}
	c.pending = c.deps.Frames.RequestFrame(c.onFrame)
}

func (c *Controller) unschedule() {
	if c.pending == 0 {
		return
	}
	c.deps.Frames.Cancel(c.pending)
	c.pending = 0
}

func (c *Controller) cancelMomentum() {
	c.unschedule()
	if c.st.Phase == Momentum {
		c.st.Phase = Idle
		c.st.VelocityX, c.st.VelocityY = 0, 0
	}
}

func (c *Controller) reanchor() {
	c.st.AnchorX = c.lastPointer.X - c.st.PanX
	c.st.AnchorY = c.lastPointer.Y - c.st.PanY
}

func (c *Controller) clampPan() {
	mx, my := c.maxPanAt(c.st.Scale)
	c.st.PanX = clamp(c.st.PanX, -mx, mx)
	c.st.PanY = clamp(c.st.PanY, -my, my)
}

func (c *Controller) apply() {
	if c.deps.Surface != nil {
		c.deps.Surface.ApplyTransform(c.Transform())
	}
}

func (c *Controller) showAffordance() {
	c.affMu.Lock()
	c.stopTimerLocked()
	show := !c.affVisible
	c.affVisible = true
	if c.opts.ResetHideDelay >= 0 {
		gen := c.affGen
		c.affTimer = c.deps.Clock.AfterFunc(c.opts.ResetHideDelay, func() { c.autoHide(gen) })
	}
	c.affMu.Unlock()
	if show && c.deps.Affordance != nil {
		c.deps.Affordance.Show()
	}
}

func (c *Controller) autoHide(gen uint64) {
	c.affMu.Lock()
	if gen != c.affGen || !c.affVisible {
		c.affMu.Unlock()
		return
	}
	c.affTimer = nil
	c.affVisible = false
	c.affMu.Unlock()
	if c.deps.Affordance != nil {
		c.deps.Affordance.Hide()
	}
}

func (c *Controller) hideAffordance() {
	c.affMu.Lock()
	c.stopTimerLocked()
	hide := c.affVisible
	c.affVisible = false
	c.affMu.Unlock()
	if hide && c.deps.Affordance != nil {
		c.deps.Affordance.Hide()
	}
}

// stopTimerLocked invalidates any pending auto-hide
func (c *Controller) stopTimerLocked() {
	if c.affTimer != nil {
		c.affTimer.Stop()
		c.affTimer = nil
	}
	c.affGen++
}
