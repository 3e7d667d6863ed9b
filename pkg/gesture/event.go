// Package gesture turns raw pointer, touch, wheel and key input into
// viewport controller operations.
package gesture

import "github.com/recera/pageview/pkg/viewport"

// Kind names an input event. Values follow the DOM event names so they can
// be forwarded from a browser unchanged.
type Kind string

const (
	PointerDown   Kind = "pointerdown"
	PointerMove   Kind = "pointermove"
	PointerUp     Kind = "pointerup"
	PointerCancel Kind = "pointercancel"
	TouchStart    Kind = "touchstart"
	TouchMove     Kind = "touchmove"
	TouchEnd      Kind = "touchend"
	TouchCancel   Kind = "touchcancel"
	Wheel         Kind = "wheel"
	DoubleClick   Kind = "dblclick"
	Key           Kind = "keydown"
)

// Event is one input sample in viewport coordinates.
type Event struct {
	Kind Kind    `json:"kind" yaml:"kind"`
	X    float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y    float64 `json:"y,omitempty" yaml:"y,omitempty"`

	// Button is the mouse button for pointer events, 0 = primary
	Button int `json:"button,omitempty" yaml:"button,omitempty"`

	// Touches are the active touch points after the event. For touchend
	// this is the set of fingers still down.
	Touches []viewport.Point `json:"touches,omitempty" yaml:"touches,omitempty"`

	// DeltaY is the wheel delta; negative scrolls up (zoom in)
	DeltaY float64 `json:"deltaY,omitempty" yaml:"deltaY,omitempty"`

	// Modifier reports the precision zoom modifier (ctrl/meta) for wheel events
	Modifier bool `json:"modifier,omitempty" yaml:"modifier,omitempty"`

	// KeyName is the key for keydown events, e.g. "+", "-", "0", "Escape"
	KeyName string `json:"key,omitempty" yaml:"key,omitempty"`
}

// Point returns the event position
func (e Event) Point() viewport.Point {
	return viewport.Point{X: e.X, Y: e.Y}
}
