//go:build !js || !wasm

package dom

import (
	"github.com/recera/pageview/pkg/gesture"
	"github.com/recera/pageview/pkg/viewport"
)

// Viewer is stubbed out for non-WASM builds
type Viewer struct{}

// Attach always fails outside the browser
func Attach(_ Selectors, _ *viewport.Options, _ *gesture.Options) (*Viewer, error) {
	return nil, ErrUnsupported
}

// Controller returns nil for non-WASM builds
func (v *Viewer) Controller() *viewport.Controller { return nil }

// Close is a no-op for non-WASM builds
func (v *Viewer) Close() {}
