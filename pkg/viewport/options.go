package viewport

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Options configures zoom bounds, step sizes and momentum behaviour.
// Zero values are replaced by the documented defaults.
type Options struct {
	// Zoom
	MinScale    float64 // default 0.5
	MaxScale    float64 // default 3.0
	ZoomStep    float64 // default 0.1 per wheel notch
	KeyZoomStep float64 // default 0.2 per +/- key press
	ToggleScale float64 // default 2.0 (double tap / double click)

	// RequireWheelModifier ignores wheel zoom unless a modifier key is held
	RequireWheelModifier bool

	// Momentum
	Decay             float64 // default 0.92, must be in (0, 1)
	MomentumThreshold float64 // default 0.1 px/frame

	// ResetHideDelay is how long the reset affordance stays visible after
	// the last zoom change. Negative keeps it visible until reset.
	ResetHideDelay time.Duration // default 2s
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		MinScale:          0.5,
		MaxScale:          3.0,
		ZoomStep:          0.1,
		KeyZoomStep:       0.2,
		ToggleScale:       2.0,
		Decay:             0.92,
		MomentumThreshold: 0.1,
		ResetHideDelay:    2 * time.Second,
	}
}

var (
	// ErrScaleRange is returned when MinScale > MaxScale
	ErrScaleRange = errors.New("viewport: min scale exceeds max scale")
	// ErrDecay is returned when the decay factor is outside (0, 1)
	ErrDecay = errors.New("viewport: decay must be in (0, 1)")
)

// Validate reports an invalid field. Zero fields are valid since they fall
// back to defaults.
func (o Options) Validate() error {
	for name, v := range map[string]float64{
		"min scale":          o.MinScale,
		"max scale":          o.MaxScale,
		"zoom step":          o.ZoomStep,
		"key zoom step":      o.KeyZoomStep,
		"toggle scale":       o.ToggleScale,
		"decay":              o.Decay,
		"momentum threshold": o.MomentumThreshold,
	} {
		if !finite(v) || v < 0 {
			return fmt.Errorf("viewport: invalid %s %v", name, v)
		}
	}
	def := DefaultOptions()
	minScale, maxScale := def.MinScale, def.MaxScale
	if o.MinScale != 0 {
		minScale = o.MinScale
	}
	if o.MaxScale != 0 {
		maxScale = o.MaxScale
	}
	if minScale > maxScale {
		return fmt.Errorf("%w: %v > %v", ErrScaleRange, minScale, maxScale)
	}
	if o.Decay >= 1 {
		return fmt.Errorf("%w: %v", ErrDecay, o.Decay)
	}
	return nil
}

func (o *Options) withDefaults() Options {
	d := DefaultOptions()
	if o == nil {
		return d
	}
	d.RequireWheelModifier = o.RequireWheelModifier
	if positive(o.MinScale) {
		d.MinScale = o.MinScale
	}
	if positive(o.MaxScale) {
		d.MaxScale = o.MaxScale
	}
	if d.MinScale > d.MaxScale {
		// Keep whichever bound was set explicitly and collapse the other onto it
		if positive(o.MinScale) && positive(o.MaxScale) {
			d.MinScale, d.MaxScale = DefaultOptions().MinScale, DefaultOptions().MaxScale
		} else if positive(o.MinScale) {
			d.MaxScale = d.MinScale
		} else {
			d.MinScale = d.MaxScale
		}
	}
	if positive(o.ZoomStep) {
		d.ZoomStep = o.ZoomStep
	}
	if positive(o.KeyZoomStep) {
		d.KeyZoomStep = o.KeyZoomStep
	}
	if positive(o.ToggleScale) {
		d.ToggleScale = o.ToggleScale
	}
	if positive(o.Decay) && o.Decay < 1 {
		d.Decay = o.Decay
	}
	if positive(o.MomentumThreshold) {
		d.MomentumThreshold = o.MomentumThreshold
	}
	if o.ResetHideDelay != 0 {
		d.ResetHideDelay = o.ResetHideDelay
	}
	return d
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func positive(v float64) bool { return finite(v) && v > 0 }
