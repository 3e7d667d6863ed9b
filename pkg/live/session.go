package live

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/recera/pageview/pkg/frame"
	"github.com/recera/pageview/pkg/gesture"
	"github.com/recera/pageview/pkg/viewport"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

// Session is one remote viewer. Its controller is only touched from the
// session goroutine; connections, timers and frame tickers post tasks to it.
type Session struct {
	ID string

	server *Server
	log    logrus.FieldLogger

	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once

	// Owned by the session goroutine
	ctrl   *viewport.Controller
	rec    *gesture.Recognizer
	bounds *viewport.StaticBounds
	manual *frame.Manual
	ticker *frame.Ticker
	conn   *connection
	dirty  bool
	expiry *time.Timer
}

// connection is one websocket attached to a session
type connection struct {
	ws        *websocket.Conn
	send      chan []byte
	closeChan chan struct{}
	closeOnce sync.Once
}

func newSession(id string, server *Server) *Session {
	s := &Session{
		ID:     id,
		server: server,
		log:    server.log.WithField("session", id),
		tasks:  make(chan func(), sendBuffer),
		done:   make(chan struct{}),
		bounds: &viewport.StaticBounds{},
	}

	deps := viewport.Deps{
		Surface:    viewport.SurfaceFunc(func(viewport.Transform) { s.dirty = true }),
		Bounds:     s.bounds,
		Affordance: s,
		Clock:      viewport.SystemClock{Post: s.enqueue},
	}
	if server.cfg.Frames == FramesFromServer {
		s.ticker = frame.NewTicker(server.cfg.FrameInterval, s.enqueue)
		s.ticker.SetErrorHandler(s.frameError)
		deps.Frames = s.ticker
	} else {
		s.manual = frame.NewManual()
		s.manual.SetErrorHandler(s.frameError)
		deps.Frames = s.manual
	}
	opts := server.cfg.Viewport
	gopts := server.cfg.Gesture
	s.ctrl = viewport.New(&opts, deps)
	s.rec = gesture.NewRecognizer(s.ctrl, &gopts)

	go s.run()
	return s
}

// Show implements viewport.Affordance
func (s *Session) Show() { s.dirty = true }

// Hide implements viewport.Affordance
func (s *Session) Hide() { s.dirty = true }

// State returns the session's transform state, or false once it has ended
func (s *Session) State() (viewport.TransformState, bool) {
	ch := make(chan viewport.TransformState, 1)
	if !s.post(func() { ch <- s.ctrl.State() }) {
		return viewport.TransformState{}, false
	}
	select {
	case st := <-ch:
		return st, true
	case <-s.done:
		return viewport.TransformState{}, false
	}
}

// post queues fn on the session goroutine and reports whether it was queued
func (s *Session) post(fn func()) bool {
	select {
	case s.tasks <- fn:
		return true
	case <-s.done:
		return false
	}
}

// enqueue is post for callers that cannot act on a closed session
func (s *Session) enqueue(fn func()) { s.post(fn) }

func (s *Session) run() {
	for {
		select {
		case fn := <-s.tasks:
			fn()
			s.flush()
		case <-s.done:
			s.shutdown()
			return
		}
	}
}

func (s *Session) shutdown() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	if s.expiry != nil {
		s.expiry.Stop()
	}
	s.ctrl.Reset()
	if s.conn != nil {
		s.conn.close()
		s.conn = nil
	}
	s.server.removeSession(s)
	s.log.Info("session closed")
}

func (s *Session) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Session) frameError(err interface{}) {
	s.log.WithField("panic", err).Error("frame callback failed")
}

// attach starts serving ws for this session, replacing any previous
// connection
func (s *Session) attach(ws *websocket.Conn) {
	c := &connection{
		ws:        ws,
		send:      make(chan []byte, sendBuffer),
		closeChan: make(chan struct{}),
	}
	go c.writer(s.log)
	if !s.post(func() { s.setConn(c) }) {
		c.close()
		return
	}
	go s.reader(c)
}

func (s *Session) setConn(c *connection) {
	if s.conn != nil {
		s.log.Info("connection replaced")
		s.conn.close()
	}
	if s.expiry != nil {
		s.expiry.Stop()
		s.expiry = nil
	}
	s.conn = c
	s.queue(c, s.snapshot(MsgWelcome))
	s.log.Info("connection attached")
}

func (s *Session) detach(c *connection) {
	if s.conn != c {
		return
	}
	s.conn = nil
	s.rec.Handle(gesture.Event{Kind: gesture.PointerCancel})
	s.rec.Handle(gesture.Event{Kind: gesture.TouchCancel})
	ttl := s.server.cfg.SessionTTL
	s.expiry = time.AfterFunc(ttl, func() {
		s.post(func() {
			if s.conn == nil {
				s.log.Info("session expired")
				s.close()
			}
		})
	})
	s.log.WithField("ttl", ttl).Info("connection detached")
}

func (s *Session) reader(c *connection) {
	defer func() {
		c.close()
		s.post(func() { s.detach(c) })
	}()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.WithError(err).Warn("unexpected close")
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		msg, err := DecodeClientMessage(data)
		if err != nil {
			s.log.WithError(err).Debug("rejected message")
			s.queue(c, ServerMessage{Type: MsgError, Session: s.ID, Error: err.Error()})
			continue
		}
		if !s.post(func() { s.handle(msg) }) {
			return
		}
	}
}

func (s *Session) handle(msg ClientMessage) {
	switch msg.Type {
	case MsgHello, MsgResize:
		if msg.Viewport != nil {
			s.bounds.ViewportSize = *msg.Viewport
		}
		if msg.Content != nil {
			s.bounds.ContentSize = *msg.Content
		}
		s.ctrl.Resize()
	case MsgInput:
		s.rec.Handle(*msg.Event)
	case MsgFrame:
		if s.manual == nil {
			return
		}
		for i := 0; i < msg.Frames && s.manual.Pending() > 0; i++ {
			s.manual.Step()
		}
	}
	s.dirty = true
}

func (s *Session) snapshot(kind MessageType) ServerMessage {
	t := s.ctrl.Transform()
	return ServerMessage{
		Type:       kind,
		Session:    s.ID,
		Transform:  &t,
		Phase:      s.ctrl.Phase(),
		Affordance: s.ctrl.AffordanceVisible(),
		Animating:  s.manual != nil && s.ctrl.Phase() == viewport.Momentum,
	}
}

func (s *Session) flush() {
	if !s.dirty || s.conn == nil {
		return
	}
	s.dirty = false
	s.queue(s.conn, s.snapshot(MsgTransform))
}

// queue hands msg to the connection's writer without blocking. When the
// buffer is full the message is dropped; the next flush carries the
// latest state anyway.
func (s *Session) queue(c *connection, msg ServerMessage) {
	data, err := EncodeServerMessage(msg)
	if err != nil {
		s.log.WithError(err).Error("encode failed")
		return
	}
	select {
	case c.send <- data:
	case <-c.closeChan:
	default:
		s.log.Warn("send buffer full, dropping message")
	}
}

// writer owns all writes to the websocket
func (c *connection) writer(log logrus.FieldLogger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.WithError(err).Debug("write failed")
				c.close()
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.closeChan:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *connection) close() {
	c.closeOnce.Do(func() { close(c.closeChan) })
}
