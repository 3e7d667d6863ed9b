//go:build js && wasm
// +build js,wasm

package dom

import (
	"fmt"
	"syscall/js"

	"github.com/recera/pageview/pkg/frame"
	"github.com/recera/pageview/pkg/gesture"
	"github.com/recera/pageview/pkg/viewport"
)

// Viewer owns the controller, recognizer and listeners of one zoomable
// element
type Viewer struct {
	container js.Value
	surface   js.Value
	reset     js.Value

	ctrl   *viewport.Controller
	rec    *gesture.Recognizer
	frames *animationFrames

	listeners []listener
}

type listener struct {
	target js.Value
	event  string
	fn     js.Func
}

// Attach wires the elements named by sel to a new controller
func Attach(sel Selectors, opts *viewport.Options, gopts *gesture.Options) (*Viewer, error) {
	doc := js.Global().Get("document")
	find := func(q string) (js.Value, error) {
		el := doc.Call("querySelector", q)
		if !el.Truthy() {
			return js.Null(), fmt.Errorf("%w: %s", ErrNotFound, q)
		}
		return el, nil
	}

	container, err := find(sel.Container)
	if err != nil {
		return nil, err
	}
	surface, err := find(sel.Surface)
	if err != nil {
		return nil, err
	}
	v := &Viewer{
		container: container,
		surface:   surface,
		reset:     js.Null(),
		frames:    newAnimationFrames(),
	}
	deps := viewport.Deps{
		Surface: viewport.SurfaceFunc(v.applyTransform),
		Bounds:  v,
		Frames:  v.frames,
	}
	if sel.Reset != "" {
		if v.reset, err = find(sel.Reset); err != nil {
			return nil, err
		}
		deps.Affordance = v
	}
	v.ctrl = viewport.New(opts, deps)
	v.rec = gesture.NewRecognizer(v.ctrl, gopts)

	surface.Get("style").Set("transformOrigin", "center center")
	surface.Get("style").Set("willChange", "transform")
	container.Get("style").Set("touchAction", "none")
	v.Hide()
	v.bind()
	v.ctrl.Reset()
	return v, nil
}

// Controller exposes the underlying controller
func (v *Viewer) Controller() *viewport.Controller { return v.ctrl }

// Close removes all listeners and cancels pending frames
func (v *Viewer) Close() {
	v.ctrl.Reset()
	for _, l := range v.listeners {
		l.target.Call("removeEventListener", l.event, l.fn)
		l.fn.Release()
	}
	v.listeners = nil
	v.frames.close()
}

// Viewport implements viewport.Bounds
func (v *Viewer) Viewport() viewport.Size {
	rect := v.container.Call("getBoundingClientRect")
	return viewport.Size{W: rect.Get("width").Float(), H: rect.Get("height").Float()}
}

// Content implements viewport.Bounds. Layout sizes ignore CSS transforms.
func (v *Viewer) Content() viewport.Size {
	return viewport.Size{W: v.surface.Get("offsetWidth").Float(), H: v.surface.Get("offsetHeight").Float()}
}

// Show implements viewport.Affordance
func (v *Viewer) Show() {
	if v.reset.Truthy() {
		v.reset.Get("style").Set("display", "")
	}
}

// Hide implements viewport.Affordance
func (v *Viewer) Hide() {
	if v.reset.Truthy() {
		v.reset.Get("style").Set("display", "none")
	}
}

func (v *Viewer) applyTransform(t viewport.Transform) {
	v.surface.Get("style").Set("transform", t.String())
}

func (v *Viewer) on(target js.Value, event string, passive bool, fn func(e js.Value) bool) {
	jsFn := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) == 0 {
			return nil
		}
		if fn(args[0]) && !passive {
			args[0].Call("preventDefault")
		}
		return nil
	})
	opts := js.Global().Get("Object").New()
	opts.Set("passive", passive)
	target.Call("addEventListener", event, jsFn, opts)
	v.listeners = append(v.listeners, listener{target: target, event: event, fn: jsFn})
}

// local converts client coordinates to container coordinates
func (v *Viewer) local(clientX, clientY float64) (float64, float64) {
	rect := v.container.Call("getBoundingClientRect")
	return clientX - rect.Get("left").Float(), clientY - rect.Get("top").Float()
}

func (v *Viewer) pointerEvent(kind gesture.Kind) func(e js.Value) bool {
	return func(e js.Value) bool {
		// Touch input arrives through the touch events
		if e.Get("pointerType").String() == "touch" {
			return false
		}
		x, y := v.local(e.Get("clientX").Float(), e.Get("clientY").Float())
		if kind == gesture.PointerDown {
			v.container.Call("setPointerCapture", e.Get("pointerId"))
		}
		return v.rec.Handle(gesture.Event{Kind: kind, X: x, Y: y, Button: e.Get("button").Int()})
	}
}

func (v *Viewer) touchEvent(kind gesture.Kind) func(e js.Value) bool {
	return func(e js.Value) bool {
		list := e.Get("touches")
		n := list.Get("length").Int()
		touches := make([]viewport.Point, 0, n)
		for i := 0; i < n; i++ {
			t := list.Call("item", i)
			x, y := v.local(t.Get("clientX").Float(), t.Get("clientY").Float())
			touches = append(touches, viewport.Point{X: x, Y: y})
		}
		return v.rec.Handle(gesture.Event{Kind: kind, Touches: touches})
	}
}

func (v *Viewer) bind() {
	c := v.container
	win := js.Global().Get("window")

	v.on(c, "pointerdown", false, v.pointerEvent(gesture.PointerDown))
	v.on(c, "pointermove", true, v.pointerEvent(gesture.PointerMove))
	v.on(c, "pointerup", true, v.pointerEvent(gesture.PointerUp))
	v.on(c, "pointercancel", true, v.pointerEvent(gesture.PointerCancel))

	v.on(c, "touchstart", false, v.touchEvent(gesture.TouchStart))
	v.on(c, "touchmove", false, v.touchEvent(gesture.TouchMove))
	v.on(c, "touchend", false, v.touchEvent(gesture.TouchEnd))
	v.on(c, "touchcancel", true, v.touchEvent(gesture.TouchCancel))

	v.on(c, "wheel", false, func(e js.Value) bool {
		x, y := v.local(e.Get("clientX").Float(), e.Get("clientY").Float())
		return v.rec.Handle(gesture.Event{
			Kind:     gesture.Wheel,
			X:        x,
			Y:        y,
			DeltaY:   e.Get("deltaY").Float(),
			Modifier: e.Get("ctrlKey").Bool() || e.Get("metaKey").Bool(),
		})
	})
	v.on(c, "dblclick", false, func(e js.Value) bool {
		x, y := v.local(e.Get("clientX").Float(), e.Get("clientY").Float())
		return v.rec.Handle(gesture.Event{Kind: gesture.DoubleClick, X: x, Y: y})
	})
	v.on(win, "keydown", false, func(e js.Value) bool {
		tag := e.Get("target").Get("tagName").String()
		if tag == "INPUT" || tag == "TEXTAREA" {
			return false
		}
		return v.rec.Handle(gesture.Event{Kind: gesture.Key, KeyName: e.Get("key").String()})
	})
	v.on(win, "resize", true, func(js.Value) bool {
		v.ctrl.Resize()
		return false
	})
	if v.reset.Truthy() {
		v.on(v.reset, "click", false, func(js.Value) bool {
			v.ctrl.Reset()
			return true
		})
	}
}

// animationFrames is a frame.Scheduler backed by requestAnimationFrame
type animationFrames struct {
	window  js.Value
	next    frame.Handle
	pending map[frame.Handle]rafEntry
}

type rafEntry struct {
	id int
	fn js.Func
}

func newAnimationFrames() *animationFrames {
	return &animationFrames{
		window:  js.Global().Get("window"),
		pending: make(map[frame.Handle]rafEntry),
	}
}

// RequestFrame implements frame.Scheduler
func (a *animationFrames) RequestFrame(fn func()) frame.Handle {
	a.next++
	h := a.next
	var jsFn js.Func
	jsFn = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		delete(a.pending, h)
		jsFn.Release()
		fn()
		return nil
	})
	id := a.window.Call("requestAnimationFrame", jsFn).Int()
	a.pending[h] = rafEntry{id: id, fn: jsFn}
	return h
}

// Cancel implements frame.Scheduler
func (a *animationFrames) Cancel(h frame.Handle) {
	e, ok := a.pending[h]
	if !ok {
		return
	}
	delete(a.pending, h)
	a.window.Call("cancelAnimationFrame", e.id)
	e.fn.Release()
}

func (a *animationFrames) close() {
	for h := range a.pending {
		a.Cancel(h)
	}
}
