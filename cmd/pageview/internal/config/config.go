package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/recera/pageview/pkg/gesture"
	"github.com/recera/pageview/pkg/live"
	"github.com/recera/pageview/pkg/viewport"
)

// FileName is the config file looked up in the project directory
const FileName = "pageview.yaml"

// EnvPrefix prefixes environment overrides, e.g. PAGEVIEW_SERVE_ADDR
const EnvPrefix = "PAGEVIEW"

// Config represents the pageview.yaml configuration
type Config struct {
	// Controller tuning
	Viewport ViewportConfig `mapstructure:"viewport" yaml:"viewport"`

	// Gesture recognition
	Gesture GestureConfig `mapstructure:"gesture" yaml:"gesture"`

	// Live server
	Serve ServeConfig `mapstructure:"serve" yaml:"serve"`

	// Terminal viewer
	View ViewConfig `mapstructure:"view" yaml:"view"`

	// Debug enables verbose logging
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// ViewportConfig mirrors viewport.Options
type ViewportConfig struct {
	MinScale             float64 `mapstructure:"min_scale" yaml:"min_scale"`
	MaxScale             float64 `mapstructure:"max_scale" yaml:"max_scale"`
	ZoomStep             float64 `mapstructure:"zoom_step" yaml:"zoom_step"`
	KeyZoomStep          float64 `mapstructure:"key_zoom_step" yaml:"key_zoom_step"`
	ToggleScale          float64 `mapstructure:"toggle_scale" yaml:"toggle_scale"`
	Decay                float64 `mapstructure:"decay" yaml:"decay"`
	MomentumThreshold    float64 `mapstructure:"momentum_threshold" yaml:"momentum_threshold"`
	RequireWheelModifier bool    `mapstructure:"require_wheel_modifier" yaml:"require_wheel_modifier"`

	// ResetHideDelay is a Go duration; negative keeps the reset control visible
	ResetHideDelay string `mapstructure:"reset_hide_delay" yaml:"reset_hide_delay"`
}

// GestureConfig mirrors gesture.Options
type GestureConfig struct {
	DoubleTapWindow string  `mapstructure:"double_tap_window" yaml:"double_tap_window"`
	DoubleTapSlop   float64 `mapstructure:"double_tap_slop" yaml:"double_tap_slop"`
}

// ServeConfig contains live server configuration
type ServeConfig struct {
	// Listen address
	Addr string `mapstructure:"addr" yaml:"addr"`

	// Frames is "client" or "server"
	Frames string `mapstructure:"frames" yaml:"frames"`

	// Frame interval when frames are driven by the server
	FrameInterval string `mapstructure:"frame_interval" yaml:"frame_interval"`

	// How long a disconnected session is kept for reconnects
	SessionTTL string `mapstructure:"session_ttl" yaml:"session_ttl"`

	// Allowed websocket origins; empty allows all
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// ViewConfig contains terminal viewer configuration
type ViewConfig struct {
	// Content size in cells
	ContentWidth  int `mapstructure:"content_width" yaml:"content_width"`
	ContentHeight int `mapstructure:"content_height" yaml:"content_height"`

	// Frame interval for momentum
	FrameInterval string `mapstructure:"frame_interval" yaml:"frame_interval"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	o := viewport.DefaultOptions()
	g := gesture.DefaultOptions()
	return &Config{
		Viewport: ViewportConfig{
			MinScale:          o.MinScale,
			MaxScale:          o.MaxScale,
			ZoomStep:          o.ZoomStep,
			KeyZoomStep:       o.KeyZoomStep,
			ToggleScale:       o.ToggleScale,
			Decay:             o.Decay,
			MomentumThreshold: o.MomentumThreshold,
			ResetHideDelay:    o.ResetHideDelay.String(),
		},
		Gesture: GestureConfig{
			DoubleTapWindow: g.DoubleTapWindow.String(),
			DoubleTapSlop:   g.DoubleTapSlop,
		},
		Serve: ServeConfig{
			Addr:          "localhost:8080",
			Frames:        string(live.FramesFromClient),
			FrameInterval: "16ms",
			SessionTTL:    "1m",
		},
		View: ViewConfig{
			ContentWidth:  160,
			ContentHeight: 60,
			FrameInterval: "33ms",
		},
	}
}

// Load reads pageview.yaml from dir, then applies a .env file and
// PAGEVIEW_* environment overrides. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, FileName))
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", FileName, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("viewport.min_scale", d.Viewport.MinScale)
	v.SetDefault("viewport.max_scale", d.Viewport.MaxScale)
	v.SetDefault("viewport.zoom_step", d.Viewport.ZoomStep)
	v.SetDefault("viewport.key_zoom_step", d.Viewport.KeyZoomStep)
	v.SetDefault("viewport.toggle_scale", d.Viewport.ToggleScale)
	v.SetDefault("viewport.decay", d.Viewport.Decay)
	v.SetDefault("viewport.momentum_threshold", d.Viewport.MomentumThreshold)
	v.SetDefault("viewport.require_wheel_modifier", d.Viewport.RequireWheelModifier)
	v.SetDefault("viewport.reset_hide_delay", d.Viewport.ResetHideDelay)
	v.SetDefault("gesture.double_tap_window", d.Gesture.DoubleTapWindow)
	v.SetDefault("gesture.double_tap_slop", d.Gesture.DoubleTapSlop)
	v.SetDefault("serve.addr", d.Serve.Addr)
	v.SetDefault("serve.frames", d.Serve.Frames)
	v.SetDefault("serve.frame_interval", d.Serve.FrameInterval)
	v.SetDefault("serve.session_ttl", d.Serve.SessionTTL)
	v.SetDefault("serve.allowed_origins", d.Serve.AllowedOrigins)
	v.SetDefault("view.content_width", d.View.ContentWidth)
	v.SetDefault("view.content_height", d.View.ContentHeight)
	v.SetDefault("view.frame_interval", d.View.FrameInterval)
	v.SetDefault("debug", d.Debug)
}

// Save writes the configuration to dir/pageview.yaml
func Save(cfg *Config, dir string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0644)
}

// applyDefaults applies default values to missing configuration
func applyDefaults(cfg *Config) {
	d := DefaultConfig()
	if cfg.Viewport.ResetHideDelay == "" {
		cfg.Viewport.ResetHideDelay = d.Viewport.ResetHideDelay
	}
	if cfg.Gesture.DoubleTapWindow == "" {
		cfg.Gesture.DoubleTapWindow = d.Gesture.DoubleTapWindow
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = d.Serve.Addr
	}
	if cfg.Serve.Frames == "" {
		cfg.Serve.Frames = d.Serve.Frames
	}
	if cfg.Serve.FrameInterval == "" {
		cfg.Serve.FrameInterval = d.Serve.FrameInterval
	}
	if cfg.Serve.SessionTTL == "" {
		cfg.Serve.SessionTTL = d.Serve.SessionTTL
	}
	if cfg.View.ContentWidth <= 0 {
		cfg.View.ContentWidth = d.View.ContentWidth
	}
	if cfg.View.ContentHeight <= 0 {
		cfg.View.ContentHeight = d.View.ContentHeight
	}
	if cfg.View.FrameInterval == "" {
		cfg.View.FrameInterval = d.View.FrameInterval
	}
}

// Validate checks durations, frame mode and controller options
func (c *Config) Validate() error {
	if _, err := c.ViewportOptions(); err != nil {
		return err
	}
	if _, err := c.GestureOptions(); err != nil {
		return err
	}
	if _, err := c.LiveConfig(); err != nil {
		return err
	}
	if _, err := c.ViewFrameInterval(); err != nil {
		return err
	}
	return nil
}

// ViewportOptions converts the viewport section to controller options
func (c *Config) ViewportOptions() (viewport.Options, error) {
	vc := c.Viewport
	delay, err := duration("viewport.reset_hide_delay", vc.ResetHideDelay)
	if err != nil {
		return viewport.Options{}, err
	}
	o := viewport.Options{
		MinScale:             vc.MinScale,
		MaxScale:             vc.MaxScale,
		ZoomStep:             vc.ZoomStep,
		KeyZoomStep:          vc.KeyZoomStep,
		ToggleScale:          vc.ToggleScale,
		Decay:                vc.Decay,
		MomentumThreshold:    vc.MomentumThreshold,
		RequireWheelModifier: vc.RequireWheelModifier,
		ResetHideDelay:       delay,
	}
	if err := o.Validate(); err != nil {
		return viewport.Options{}, fmt.Errorf("config: viewport: %w", err)
	}
	return o, nil
}

// GestureOptions converts the gesture section to recognizer options
func (c *Config) GestureOptions() (gesture.Options, error) {
	window, err := duration("gesture.double_tap_window", c.Gesture.DoubleTapWindow)
	if err != nil {
		return gesture.Options{}, err
	}
	if window < 0 || c.Gesture.DoubleTapSlop < 0 {
		return gesture.Options{}, errors.New("config: gesture: negative double tap window or slop")
	}
	return gesture.Options{DoubleTapWindow: window, DoubleTapSlop: c.Gesture.DoubleTapSlop}, nil
}

// LiveConfig converts the serve section to a live server config. Logger is
// left for the caller.
func (c *Config) LiveConfig() (live.Config, error) {
	vo, err := c.ViewportOptions()
	if err != nil {
		return live.Config{}, err
	}
	gro, err := c.GestureOptions()
	if err != nil {
		return live.Config{}, err
	}
	interval, err := duration("serve.frame_interval", c.Serve.FrameInterval)
	if err != nil {
		return live.Config{}, err
	}
	ttl, err := duration("serve.session_ttl", c.Serve.SessionTTL)
	if err != nil {
		return live.Config{}, err
	}
	src := live.FrameSource(c.Serve.Frames)
	if src != live.FramesFromClient && src != live.FramesFromServer {
		return live.Config{}, fmt.Errorf("config: serve.frames must be %q or %q, got %q",
			live.FramesFromClient, live.FramesFromServer, c.Serve.Frames)
	}
	return live.Config{
		Viewport:       vo,
		Gesture:        gro,
		Frames:         src,
		FrameInterval:  interval,
		SessionTTL:     ttl,
		AllowedOrigins: c.Serve.AllowedOrigins,
	}, nil
}

// ViewFrameInterval returns the terminal viewer frame interval
func (c *Config) ViewFrameInterval() (time.Duration, error) {
	d, err := duration("view.frame_interval", c.View.FrameInterval)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("config: view.frame_interval must be positive")
	}
	return d, nil
}

func duration(key, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
