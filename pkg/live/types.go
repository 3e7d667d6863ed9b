package live

import (
	"github.com/recera/pageview/pkg/gesture"
	"github.com/recera/pageview/pkg/viewport"
)

// MessageType names a live protocol message
type MessageType string

const (
	// Client to server
	MsgHello  MessageType = "hello"
	MsgInput  MessageType = "input"
	MsgFrame  MessageType = "frame"
	MsgResize MessageType = "resize"

	// Server to client
	MsgWelcome   MessageType = "welcome"
	MsgTransform MessageType = "transform"
	MsgError     MessageType = "error"
)

// MaxFramesPerMessage bounds the frames a single frame message may advance
const MaxFramesPerMessage = 120

// ClientMessage is a JSON text frame sent by the browser
type ClientMessage struct {
	Type MessageType `json:"type"`

	// Event is set for input messages
	Event *gesture.Event `json:"event,omitempty"`

	// Frames is the number of display frames elapsed, defaulting to 1
	Frames int `json:"frames,omitempty"`

	// Viewport and Content are set for hello and resize messages
	Viewport *viewport.Size `json:"viewport,omitempty"`
	Content  *viewport.Size `json:"content,omitempty"`
}

// ServerMessage is a JSON text frame sent to the browser
type ServerMessage struct {
	Type    MessageType `json:"type"`
	Session string      `json:"session,omitempty"`

	Transform  *viewport.Transform `json:"transform,omitempty"`
	Phase      viewport.Phase      `json:"phase"`
	Affordance bool                `json:"affordance"`

	// Animating asks the client to keep sending frame messages
	Animating bool `json:"animating"`

	Error string `json:"error,omitempty"`
}
