//go:build !js || !wasm

// Command pagewasm is the browser build of the viewport controller. Build it
// with GOOS=js GOARCH=wasm; it registers a global pageviewAttach function
// and attaches to #viewport, #page and #reset when an element carries
// data-pageview-auto.
package main

import (
	"fmt"
	"os"

	"github.com/recera/pageview/pkg/viewport/dom"
)

func main() {
	fmt.Fprintln(os.Stderr, dom.ErrUnsupported)
	os.Exit(1)
}
