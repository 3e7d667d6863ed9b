//go:build js && wasm
// +build js,wasm

package main

import (
	"syscall/js"

	"github.com/recera/pageview/pkg/debug"
	"github.com/recera/pageview/pkg/viewport/dom"
)

// Retained viewers and handlers to prevent GC
var (
	viewers          []*dom.Viewer
	retainedHandlers []js.Func
)

func main() {
	document := js.Global().Get("document")

	attach := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		sel := dom.Selectors{Container: "#viewport", Surface: "#page", Reset: "#reset"}
		if len(args) > 0 && args[0].Type() == js.TypeObject {
			opt := args[0]
			for key, dst := range map[string]*string{
				"container": &sel.Container,
				"surface":   &sel.Surface,
				"reset":     &sel.Reset,
			} {
				if v := opt.Get(key); v.Type() == js.TypeString {
					*dst = v.String()
				}
			}
			if opt.Get("debug").Truthy() {
				debug.EnableLogging()
			}
		}
		v, err := dom.Attach(sel, nil, nil)
		if err != nil {
			debug.Logf("pageview: %v", err)
			return err.Error()
		}
		viewers = append(viewers, v)
		return nil
	})
	retainedHandlers = append(retainedHandlers, attach)
	js.Global().Set("pageviewAttach", attach)

	ready := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if document.Call("querySelector", "[data-pageview-auto]").Truthy() {
			attach.Invoke()
		}
		return nil
	})
	retainedHandlers = append(retainedHandlers, ready)
	if document.Get("readyState").String() != "loading" {
		ready.Invoke()
	} else {
		document.Call("addEventListener", "DOMContentLoaded", ready)
	}

	// Keep the WASM runtime alive
	select {}
}
