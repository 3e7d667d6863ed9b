package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/recera/pageview/pkg/live"
	"github.com/recera/pageview/pkg/viewport"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	o, err := cfg.ViewportOptions()
	if err != nil {
		t.Fatalf("ViewportOptions: %v", err)
	}
	if diff := cmp.Diff(viewport.DefaultOptions(), o); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	src := `
viewport:
  max_scale: 4
  reset_hide_delay: 500ms
serve:
  addr: ":9000"
  frames: server
  allowed_origins: [http://example.com]
debug: true
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug || cfg.Viewport.MaxScale != 4 || cfg.Viewport.MinScale != 0.5 {
		t.Errorf("viewport = %+v debug = %v", cfg.Viewport, cfg.Debug)
	}
	lc, err := cfg.LiveConfig()
	if err != nil {
		t.Fatalf("LiveConfig: %v", err)
	}
	if lc.Frames != live.FramesFromServer || lc.Viewport.ResetHideDelay != 500*time.Millisecond {
		t.Errorf("live config = %+v", lc)
	}
	if diff := cmp.Diff([]string{"http://example.com"}, lc.AllowedOrigins); diff != "" {
		t.Errorf("origins mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PAGEVIEW_VIEWPORT_DECAY", "0.8")
	t.Setenv("PAGEVIEW_SERVE_ADDR", "0.0.0.0:7000")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Viewport.Decay != 0.8 || cfg.Serve.Addr != "0.0.0.0:7000" {
		t.Errorf("env not applied: decay %v addr %q", cfg.Viewport.Decay, cfg.Serve.Addr)
	}
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PAGEVIEW_VIEW_CONTENT_WIDTH=321\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("PAGEVIEW_VIEW_CONTENT_WIDTH") })
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.View.ContentWidth != 321 {
		t.Errorf("content width = %d, want 321", cfg.View.ContentWidth)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Viewport.ToggleScale = 2.5
	cfg.Serve.AllowedOrigins = []string{"https://a.test"}
	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(cfg, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		is     error
	}{
		{"bad delay", func(c *Config) { c.Viewport.ResetHideDelay = "later" }, nil},
		{"scale range", func(c *Config) { c.Viewport.MinScale, c.Viewport.MaxScale = 3, 2 }, viewport.ErrScaleRange},
		{"decay", func(c *Config) { c.Viewport.Decay = 1.5 }, viewport.ErrDecay},
		{"frames", func(c *Config) { c.Serve.Frames = "gpu" }, nil},
		{"ttl", func(c *Config) { c.Serve.SessionTTL = "forever" }, nil},
		{"slop", func(c *Config) { c.Gesture.DoubleTapSlop = -1 }, nil},
		{"view interval", func(c *Config) { c.View.FrameInterval = "0s" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
		})
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("viewport:\n  decay: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); !errors.Is(err, viewport.ErrDecay) {
		t.Errorf("error = %v, want ErrDecay", err)
	}
}
