package viewport

import (
	"fmt"
	"strconv"
	"time"

	"github.com/recera/pageview/pkg/frame"
)

// Point is a position in viewport (screen) pixels, relative to the
// viewport's top-left corner, unless documented otherwise.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Size is a width/height pair in pixels
type Size struct {
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

func (p Point) finite() bool { return finite(p.X) && finite(p.Y) }

// Phase is the controller's interaction state
type Phase uint8

const (
	// Idle means no drag and no momentum
	Idle Phase = iota
	// Dragging lasts from pointer down (at scale > 1) until release
	Dragging
	// Momentum is the inertial glide after a fast release
	Momentum
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Momentum:
		return "momentum"
	default:
		return "phase(" + strconv.Itoa(int(p)) + ")"
	}
}

// MarshalText implements encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*p = Idle
	case "dragging":
		*p = Dragging
	case "momentum":
		*p = Momentum
	default:
		return fmt.Errorf("viewport: unknown phase %q", text)
	}
	return nil
}

// TransformState is a snapshot of the controller's mutable state.
type TransformState struct {
	Scale     float64 `json:"scale"`
	PanX      float64 `json:"panX"`
	PanY      float64 `json:"panY"`
	VelocityX float64 `json:"velocityX"`
	VelocityY float64 `json:"velocityY"`
	Phase     Phase   `json:"phase"`

	// Drag anchor: pointer position at drag start minus pan at that moment.
	// Only meaningful while Phase == Dragging.
	AnchorX float64 `json:"anchorX"`
	AnchorY float64 `json:"anchorY"`
}

// Transform is the combined translate + uniform scale pushed to the surface.
// The translation is applied before the scale, about the content's centre.
type Transform struct {
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	Scale      float64 `json:"scale"`
}

// String formats the transform as a CSS transform value
func (t Transform) String() string {
	return fmt.Sprintf("translate(%gpx, %gpx) scale(%g)", t.TranslateX, t.TranslateY, t.Scale)
}

// Surface displays the zoomed content
type Surface interface {
	ApplyTransform(t Transform)
}

// SurfaceFunc adapts a function to Surface
type SurfaceFunc func(t Transform)

// ApplyTransform calls f(t)
func (f SurfaceFunc) ApplyTransform(t Transform) { f(t) }

// Bounds supplies viewport and natural (scale 1) content dimensions.
// It is queried on demand and must reflect the latest resize.
type Bounds interface {
	Viewport() Size
	Content() Size
}

// StaticBounds is a fixed Bounds, mostly useful for tests and headless hosts
type StaticBounds struct {
	ViewportSize Size
	ContentSize  Size
}

// Viewport implements Bounds
func (b *StaticBounds) Viewport() Size { return b.ViewportSize }

// Content implements Bounds
func (b *StaticBounds) Content() Size { return b.ContentSize }

// Affordance is the "reset view" UI element
type Affordance interface {
	Show()
	Hide()
}

// Timer is a pending Clock callback
type Timer interface {
	Stop() bool
}

// Clock schedules the affordance auto-hide
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// SystemClock is a Clock backed by time.AfterFunc. When Post is set, fired
// callbacks are handed to Post so they run on the host's event loop.
type SystemClock struct {
	Post func(fn func())
}

// AfterFunc implements Clock
func (c SystemClock) AfterFunc(d time.Duration, fn func()) Timer {
	if c.Post != nil {
		post := c.Post
		return time.AfterFunc(d, func() { post(fn) })
	}
	return time.AfterFunc(d, fn)
}

// Deps are the controller's collaborators. Any of them may be nil.
type Deps struct {
	Surface    Surface
	Bounds     Bounds
	Affordance Affordance
	Frames     frame.Scheduler
	Clock      Clock
}
