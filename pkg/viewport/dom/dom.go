// Package dom attaches a viewport controller to browser elements. It is
// only functional in js/wasm builds.
package dom

import "errors"

// ErrUnsupported is returned by Attach outside the browser
var ErrUnsupported = errors.New("dom: viewport binding requires js/wasm")

// ErrNotFound is returned when a selector matches no element
var ErrNotFound = errors.New("dom: element not found")

// Selectors locate the elements the viewer drives
type Selectors struct {
	// Container receives input and defines the viewport size
	Container string
	// Surface is the zoomed element; its style.transform is written
	Surface string
	// Reset is the optional "reset view" button
	Reset string
}
