//go:build js && wasm
// +build js,wasm

// Package debug routes library debug output to the browser console.
package debug

import (
	"fmt"
	"syscall/js"

	"github.com/recera/pageview/pkg/frame"
	"github.com/recera/pageview/pkg/viewport"
)

func console(args ...interface{}) {
	js.Global().Get("console").Call("debug", args...)
}

// EnableLogging sends viewport and frame debug output to console.debug
func EnableLogging() {
	viewport.SetDebugLog(console)
	frame.SetDebugLog(console)
}

// DisableLogging silences the library debug hooks
func DisableLogging() {
	viewport.SetDebugLog(nil)
	frame.SetDebugLog(nil)
}

// Logf logs a formatted message to the console
func Logf(format string, args ...interface{}) {
	js.Global().Get("console").Call("log", fmt.Sprintf(format, args...))
}
