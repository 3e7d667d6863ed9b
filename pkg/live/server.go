// Package live serves remote viewport sessions over websockets. Each
// session owns one controller; the browser forwards input and display
// frames and renders the transforms sent back.
package live

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/recera/pageview/pkg/gesture"
	"github.com/recera/pageview/pkg/viewport"
)

// FrameSource selects what advances momentum
type FrameSource string

const (
	// FramesFromClient steps momentum on client frame messages
	FramesFromClient FrameSource = "client"
	// FramesFromServer steps momentum on a server side frame ticker
	FramesFromServer FrameSource = "server"
)

// Config configures the live server
type Config struct {
	Viewport viewport.Options
	Gesture  gesture.Options

	Frames        FrameSource   // default FramesFromClient
	FrameInterval time.Duration // server frame interval, default 16ms

	// SessionTTL keeps a disconnected session so a reconnect with the same
	// id resumes its view. Default 1 minute.
	SessionTTL time.Duration

	// AllowedOrigins restricts websocket origins; empty allows all
	AllowedOrigins []string

	// PathPrefix is stripped from the request path to get the session id.
	// Default "/live/".
	PathPrefix string

	Logger logrus.FieldLogger
}

func (c Config) withDefaults() Config {
	if c.Frames == "" {
		c.Frames = FramesFromClient
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = 16 * time.Millisecond
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = time.Minute
	}
	if c.PathPrefix == "" {
		c.PathPrefix = "/live/"
	}
	if c.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		c.Logger = l
	}
	return c
}

// Server handles websocket connections for viewport sessions
type Server struct {
	cfg      Config
	upgrader websocket.Upgrader
	sessions map[string]*Session
	mu       sync.RWMutex
	log      logrus.FieldLogger
}

// NewServer creates a new live server
func NewServer(cfg Config) *Server {
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:      cfg,
		sessions: make(map[string]*Session),
		log:      cfg.Logger,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin:     s.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, o := range s.cfg.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// ServeHTTP upgrades the request and attaches it to a session. The session
// id is the path after PathPrefix; an empty id starts a new session.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, s.cfg.PathPrefix), "/")
	if id == "" {
		id = uuid.NewString()
	} else if len(id) > 64 || strings.ContainsAny(id, "/?#") {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	session := s.getOrCreateSession(id)
	session.attach(conn)
}

// getOrCreateSession gets an existing session or creates a new one
func (s *Server) getOrCreateSession(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		return session
	}
	session := newSession(id, s)
	s.sessions[id] = session
	s.log.WithField("session", id).Info("session created")
	return session
}

// GetSession retrieves a session by id
func (s *Server) GetSession(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// SessionCount returns the number of live or resumable sessions
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// removeSession drops a session if it is still the registered one
func (s *Server) removeSession(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[session.ID] == session {
		delete(s.sessions, session.ID)
	}
}

// Close ends every session
func (s *Server) Close() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, session := range sessions {
		session.close()
	}
}
