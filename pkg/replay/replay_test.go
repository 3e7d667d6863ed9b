package replay

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/recera/pageview/pkg/viewport"
)

func TestRunDragFling(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "drag_fling.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	recs, err := Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(recs) != 7 {
		t.Fatalf("got %d records, want 7", len(recs))
	}

	zoom := recs[0]
	if zoom.Action != "zoom" || zoom.Label != "double size" || zoom.State.Scale != 2 || !zoom.Affordance {
		t.Errorf("zoom record = %+v", zoom)
	}

	move := recs[2].State
	if move.PanX != 30 || move.VelocityX != 30 || move.Phase != viewport.Dragging {
		t.Errorf("after move: %+v", move)
	}
	if recs[3].State.Phase != viewport.Momentum {
		t.Errorf("after release phase = %v, want momentum", recs[3].State.Phase)
	}

	settle := recs[4]
	if settle.Frames == 0 || settle.State.Phase != viewport.Idle {
		t.Errorf("settle record = %+v", settle)
	}
	if settle.State.PanX != 400 {
		t.Errorf("settled pan = %v, want clamped 400", settle.State.PanX)
	}
	if !settle.Affordance {
		t.Error("affordance hidden before its delay")
	}

	// total simulated time passes the 2s hide delay
	if recs[5].Affordance {
		t.Error("affordance still visible after delay")
	}

	reset := recs[6].State
	want := viewport.TransformState{Scale: 1, Phase: viewport.Idle}
	if diff := cmp.Diff(want, reset); diff != "" {
		t.Errorf("reset state mismatch (-want +got):\n%s", diff)
	}
}

func TestRunPinchAndToggle(t *testing.T) {
	s, err := Parse([]byte(`
viewport: {w: 800, h: 600}
content: {w: 1600, h: 1200}
options:
  max_scale: 2.5
steps:
  - pinch: 1.5
    at: {x: 400, y: 300}
  - pinch: 4
  - toggle: true
  - toggle: true
    at: {x: 600, y: 300}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	recs, err := Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	scales := make([]float64, len(recs))
	for i, r := range recs {
		scales[i] = r.State.Scale
	}
	if diff := cmp.Diff([]float64{1.5, 2.5, 1, 2}, scales); diff != "" {
		t.Errorf("scales mismatch (-want +got):\n%s", diff)
	}
	// toggle at 200px right of centre keeps that content point fixed
	if got := recs[3].State.PanX; math.Abs(got-(-200)) > 1e-9 {
		t.Errorf("toggle pan = %v, want -200", got)
	}
}

func TestRunResize(t *testing.T) {
	s, err := Parse([]byte(`
viewport: {w: 800, h: 600}
content: {w: 800, h: 600}
steps:
  - zoom: 2
    at: {x: 0, y: 0}
  - resize:
      viewport: {w: 1400, h: 1000}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	recs, err := Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := recs[0].State; got.PanX != 400 || got.PanY != 300 {
		t.Fatalf("zoom at corner pan = %v,%v, want 400,300", got.PanX, got.PanY)
	}
	if got := recs[1].State; got.PanX != 100 || got.PanY != 100 {
		t.Errorf("resized pan = %v,%v, want 100,100", got.PanX, got.PanY)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		is   error
	}{
		{"empty step", "steps:\n  - label: nothing\n", ErrEmptyStep},
		{"two actions", "steps:\n  - reset: true\n    toggle: true\n", nil},
		{"negative frames", "steps:\n  - frames: -3\n", nil},
		{"unknown field", "steps:\n  - teleport: true\n", nil},
		{"bad yaml", "steps: [", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestTuning(t *testing.T) {
	o, err := Tuning{MaxScale: 4, ResetHideDelay: "500ms"}.ViewportOptions()
	if err != nil {
		t.Fatalf("ViewportOptions: %v", err)
	}
	if o.MaxScale != 4 || o.ResetHideDelay != 500*time.Millisecond {
		t.Errorf("options = %+v", o)
	}
	if _, err := (Tuning{ResetHideDelay: "soon"}).ViewportOptions(); err == nil {
		t.Error("expected duration error")
	}
	if _, err := (Tuning{MinScale: 3, MaxScale: 2}).ViewportOptions(); !errors.Is(err, viewport.ErrScaleRange) {
		t.Errorf("error = %v, want ErrScaleRange", err)
	}
}

func TestWriteText(t *testing.T) {
	recs := []Record{{Step: 1, Action: "zoom", Label: "in", State: viewport.TransformState{Scale: 2}, Affordance: true}}
	var buf bytes.Buffer
	if err := WriteText(&buf, recs); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"STEP", "zoom (in)", "2.000", "idle", "true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, []Record{{Step: 1, Action: "reset", State: viewport.TransformState{Scale: 1}}}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"phase": "idle"`) {
		t.Errorf("json = %s", buf.String())
	}
}
