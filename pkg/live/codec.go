package live

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/recera/pageview/pkg/viewport"
)

var (
	// ErrUnknownType is returned for messages with an unrecognised type
	ErrUnknownType = errors.New("live: unknown message type")
	// ErrMalformed is returned for messages missing required fields
	ErrMalformed = errors.New("live: malformed message")
)

// DecodeClientMessage parses and validates one client text frame
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch msg.Type {
	case MsgHello:
		if !validSizes(msg.Viewport, msg.Content) {
			return ClientMessage{}, fmt.Errorf("%w: bad size", ErrMalformed)
		}
	case MsgInput:
		if msg.Event == nil || msg.Event.Kind == "" {
			return ClientMessage{}, fmt.Errorf("%w: input without event", ErrMalformed)
		}
	case MsgFrame:
		if msg.Frames < 0 {
			return ClientMessage{}, fmt.Errorf("%w: negative frame count", ErrMalformed)
		}
		if msg.Frames == 0 {
			msg.Frames = 1
		}
		if msg.Frames > MaxFramesPerMessage {
			msg.Frames = MaxFramesPerMessage
		}
	case MsgResize:
		if msg.Viewport == nil && msg.Content == nil {
			return ClientMessage{}, fmt.Errorf("%w: resize without sizes", ErrMalformed)
		}
		if !validSizes(msg.Viewport, msg.Content) {
			return ClientMessage{}, fmt.Errorf("%w: bad size", ErrMalformed)
		}
	default:
		return ClientMessage{}, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return msg, nil
}

// EncodeServerMessage marshals a server message
func EncodeServerMessage(msg ServerMessage) ([]byte, error) {
	return json.Marshal(msg)
}

func validSizes(sizes ...*viewport.Size) bool {
	ok := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 }
	for _, s := range sizes {
		if s != nil && !(ok(s.W) && ok(s.H)) {
			return false
		}
	}
	return true
}
