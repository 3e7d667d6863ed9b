// Package replay runs scripted gesture sequences through a controller with
// a deterministic frame clock. It backs the replay command and doubles as a
// fixture format for regression tests.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/recera/pageview/pkg/gesture"
	"github.com/recera/pageview/pkg/viewport"
)

// ErrEmptyStep is returned for a step with no action
var ErrEmptyStep = errors.New("replay: step has no action")

// Script is a gesture sequence with the geometry it runs against
type Script struct {
	Viewport viewport.Size `yaml:"viewport"`
	Content  viewport.Size `yaml:"content"`
	Options  Tuning        `yaml:"options"`
	Steps    []Step        `yaml:"steps"`
}

// Tuning overrides controller options; zero fields keep the defaults
type Tuning struct {
	MinScale             float64 `yaml:"min_scale"`
	MaxScale             float64 `yaml:"max_scale"`
	ZoomStep             float64 `yaml:"zoom_step"`
	KeyZoomStep          float64 `yaml:"key_zoom_step"`
	ToggleScale          float64 `yaml:"toggle_scale"`
	Decay                float64 `yaml:"decay"`
	MomentumThreshold    float64 `yaml:"momentum_threshold"`
	RequireWheelModifier bool    `yaml:"require_wheel_modifier"`
	ResetHideDelay       string  `yaml:"reset_hide_delay"`
}

// ViewportOptions converts the tuning to controller options
func (t Tuning) ViewportOptions() (viewport.Options, error) {
	o := viewport.Options{
		MinScale:             t.MinScale,
		MaxScale:             t.MaxScale,
		ZoomStep:             t.ZoomStep,
		KeyZoomStep:          t.KeyZoomStep,
		ToggleScale:          t.ToggleScale,
		Decay:                t.Decay,
		MomentumThreshold:    t.MomentumThreshold,
		RequireWheelModifier: t.RequireWheelModifier,
	}
	if t.ResetHideDelay != "" {
		d, err := time.ParseDuration(t.ResetHideDelay)
		if err != nil {
			return viewport.Options{}, fmt.Errorf("replay: reset_hide_delay: %w", err)
		}
		o.ResetHideDelay = d
	}
	if err := o.Validate(); err != nil {
		return viewport.Options{}, err
	}
	return o, nil
}

// Step is one scripted action. Exactly one action field must be set.
type Step struct {
	Label string `yaml:"label,omitempty"`

	Event  *gesture.Event  `yaml:"event,omitempty"`
	Zoom   *float64        `yaml:"zoom,omitempty"`
	Pinch  *float64        `yaml:"pinch,omitempty"`
	At     *viewport.Point `yaml:"at,omitempty"`
	Key    string          `yaml:"key,omitempty"`
	Toggle bool            `yaml:"toggle,omitempty"`
	Reset  bool            `yaml:"reset,omitempty"`
	Frames int             `yaml:"frames,omitempty"`
	Settle bool            `yaml:"settle,omitempty"`
	Resize *Resize         `yaml:"resize,omitempty"`
}

// Resize changes the geometry mid-script
type Resize struct {
	Viewport *viewport.Size `yaml:"viewport,omitempty"`
	Content  *viewport.Size `yaml:"content,omitempty"`
}

// Action names the step's action
func (s Step) Action() string {
	switch {
	case s.Event != nil:
		return string(s.Event.Kind)
	case s.Zoom != nil:
		return "zoom"
	case s.Pinch != nil:
		return "pinch"
	case s.Key != "":
		return "key " + s.Key
	case s.Toggle:
		return "toggle"
	case s.Reset:
		return "reset"
	case s.Frames != 0:
		return "frames"
	case s.Settle:
		return "settle"
	case s.Resize != nil:
		return "resize"
	default:
		return ""
	}
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{
		s.Event != nil, s.Zoom != nil, s.Pinch != nil, s.Key != "", s.Toggle,
		s.Reset, s.Frames != 0, s.Settle, s.Resize != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Validate checks that every step has exactly one action
func (s *Script) Validate() error {
	for i, step := range s.Steps {
		switch n := step.actions(); {
		case n == 0:
			return fmt.Errorf("step %d: %w", i+1, ErrEmptyStep)
		case n > 1:
			return fmt.Errorf("replay: step %d has %d actions", i+1, n)
		}
		if step.Frames < 0 {
			return fmt.Errorf("replay: step %d: negative frame count", i+1)
		}
	}
	return nil
}

// Parse decodes a YAML script
func Parse(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("replay: parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a script file
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return Parse(data)
}
