//go:build !wasm

package live

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/recera/famtree/pkg/family"
	"github.com/recera/famtree/pkg/renderer/html"
	"github.com/recera/famtree/pkg/scheduler"
	"github.com/recera/famtree/pkg/search"
)

var (
	// ErrSessionClosed is returned when sending on a closed session.
	ErrSessionClosed = errors.New("live: session closed")

	// ErrSessionInUse is returned when a client asks for a session id that
	// another connection still holds.
	ErrSessionInUse = errors.New("live: session in use")
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
	readWait   = 5 * time.Minute
)

// PeopleFunc returns the dataset a new session indexes.
type PeopleFunc func() []family.Person

// Config tunes the widgets the server creates.
type Config struct {
	// Selector is the mount point the client page declares.
	Selector    string
	Limit       int
	GraceDelay  time.Duration
	Placeholder string
	// CheckOrigin defaults to accepting every origin.
	CheckOrigin func(r *http.Request) bool
	Logger      *slog.Logger
}

// Server handles WebSocket connections for live search sessions.
type Server struct {
	upgrader websocket.Upgrader
	people   PeopleFunc
	cfg      Config
	log      *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewServer creates a new live search server.
func NewServer(people PeopleFunc, cfg Config) *Server {
	if cfg.Selector == "" {
		cfg.Selector = "#FamilyChart"
	}
	if cfg.CheckOrigin == nil {
		cfg.CheckOrigin = func(*http.Request) bool { return true }
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin:     cfg.CheckOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		people:   people,
		cfg:      cfg,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// HandleWebSocket upgrades the request and serves the session until the
// connection closes. A sessionID of "new" gets a generated id.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request, sessionID string) {
	if sessionID == "" {
		http.Error(w, "Session ID required", http.StatusBadRequest)
		return
	}
	if sessionID == NewSessionID {
		sessionID = uuid.NewString()
	}
	if _, ok := s.GetSession(sessionID); ok {
		http.Error(w, "Session in use", http.StatusConflict)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("live upgrade failed", "session", sessionID, "err", err)
		return
	}

	session, err := s.openSession(sessionID, conn)
	if err != nil {
		s.log.Error("live session failed", "session", sessionID, "err", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	session.serve()
	s.closeSession(session)
}

// openSession creates and registers a session. An id is held until its
// connection closes; a second connection with the same id is refused.
func (s *Server) openSession(id string, conn *websocket.Conn) (*Session, error) {
	session := newSession(id, conn, s.log.With("session", id))

	var err error
	session.loop.Do(func() {
		session.surface, session.controller, err = s.mount(session)
	})
	if err != nil {
		session.loop.Stop()
		return nil, err
	}

	s.mu.Lock()
	_, taken := s.sessions[id]
	if !taken {
		s.sessions[id] = session
	}
	s.mu.Unlock()
	if taken {
		session.close()
		return nil, ErrSessionInUse
	}
	return session, nil
}

// mount runs on the session loop.
func (s *Server) mount(session *Session) (*html.Surface, *search.Controller, error) {
	host := html.NewHost(s.cfg.Selector)
	opts := []search.ControllerOption{
		search.WithDeferrer(session.loop),
		search.WithLogger(session.log),
	}
	if s.cfg.Limit > 0 {
		opts = append(opts, search.WithLimit(s.cfg.Limit))
	}
	if s.cfg.GraceDelay > 0 {
		opts = append(opts, search.WithGraceDelay(s.cfg.GraceDelay))
	}
	if s.cfg.Placeholder != "" {
		opts = append(opts, search.WithPlaceholder(s.cfg.Placeholder))
	}

	var people []family.Person
	if s.people != nil {
		people = s.people()
	}
	c, err := search.New(host, s.cfg.Selector, people, session.selected, opts...)
	if err != nil {
		return nil, nil, err
	}
	surface := host.Surface(s.cfg.Selector)
	surface.OnRender(session.rendered)
	return surface, c, nil
}

func (s *Server) closeSession(session *Session) {
	s.mu.Lock()
	if s.sessions[session.ID] == session {
		delete(s.sessions, session.ID)
	}
	s.mu.Unlock()
	session.close()
}

// GetSession retrieves a session by ID
func (s *Server) GetSession(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) each(fn func(*Session)) {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.RUnlock()
	for _, session := range sessions {
		fn(session)
	}
}

// AddPerson adds p to every session's index.
func (s *Server) AddPerson(p family.Person) {
	s.each(func(session *Session) {
		session.loop.Post(func() { session.controller.AddPerson(p) })
	})
}

// UpdatePerson relabels p in every session's index, adding it where it is
// new.
func (s *Server) UpdatePerson(p family.Person) {
	s.each(func(session *Session) {
		session.loop.Post(func() { session.controller.UpdatePerson(p) })
	})
}

// RemovePerson removes id from every session's index.
func (s *Server) RemovePerson(id family.ID) {
	s.each(func(session *Session) {
		session.loop.Post(func() { session.controller.RemovePerson(id) })
	})
}

// Apply forwards a dataset change to every session.
func (s *Server) Apply(change family.Change) {
	for _, id := range change.Removed {
		s.RemovePerson(id)
	}
	for _, p := range change.Added {
		s.UpdatePerson(p)
	}
}

// Close ends every session.
func (s *Server) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()
	for _, session := range sessions {
		session.close()
	}
}

// Session is one connected widget. Controller calls happen on its loop.
type Session struct {
	ID   string
	conn *websocket.Conn
	loop *scheduler.Loop
	log  *slog.Logger

	surface    *html.Surface
	controller *search.Controller

	// set while an event is handled; renders are flushed after it
	inEvent bool
	dirty   bool
	selects []SelectMessage

	send      chan outbound
	closeChan chan struct{}
	closeOnce sync.Once
}

type outbound struct {
	kind int
	data []byte
}

func newSession(id string, conn *websocket.Conn, log *slog.Logger) *Session {
	loop := scheduler.NewLoop()
	loop.SetErrorHandler(func(err interface{}) {
		log.Error("live session task panicked", "err", err)
	})
	loop.Start()
	return &Session{
		ID:        id,
		conn:      conn,
		loop:      loop,
		log:       log,
		send:      make(chan outbound, 256),
		closeChan: make(chan struct{}),
	}
}

// serve runs the read loop until the connection fails.
func (s *Session) serve() {
	go s.writer()

	s.sendBinary(EncodeControl(ControlHello, s.ID))
	s.loop.Post(s.flush)
	s.log.Debug("live session started")

	s.conn.SetReadLimit(maxPayload + 16)
	s.conn.SetReadDeadline(time.Now().Add(readWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("live session closed unexpectedly", "err", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(readWait))
		if messageType != websocket.BinaryMessage {
			s.log.Debug("live text message ignored", "size", len(data))
			continue
		}
		s.handleBinaryMessage(data)
	}
}

func (s *Session) handleBinaryMessage(data []byte) {
	if len(data) == 0 {
		return
	}
	switch MessageType(data[0]) {
	case FrameEvent:
		evt, err := DecodeEvent(data)
		if err != nil {
			s.log.Warn("live frame dropped", "err", err)
			return
		}
		s.loop.Post(func() { s.handleEvent(evt) })

	case FrameControl:
		name, _, err := DecodeControl(data)
		if err != nil {
			s.log.Warn("live control frame dropped", "err", err)
			return
		}
		switch name {
		case ControlPing:
			s.sendBinary(EncodeControl(ControlPong))
		case ControlHello:
			s.log.Debug("live client hello")
		}

	default:
		s.log.Warn("live frame dropped", "frame", data[0])
	}
}

// handleEvent runs on the loop.
func (s *Session) handleEvent(evt *Event) {
	s.log.Debug("live event", "type", evt.Type.String())

	s.inEvent = true
	switch evt.Type {
	case EventInput:
		s.surface.SetFocus(true)
		s.controller.Input(evt.Text)
	case EventKey:
		s.controller.KeyDown(evt.Text)
	case EventFocus:
		s.surface.SetFocus(true)
		s.controller.Focus()
	case EventFocusOut:
		s.surface.SetFocus(evt.Inside)
		s.controller.FocusOut()
	case EventClick:
		s.controller.Click(evt.Index)
	}
	s.inEvent = false
	s.flush()
}

// rendered runs on the loop, from the surface.
func (s *Session) rendered(search.View) {
	if s.inEvent {
		s.dirty = true
		return
	}
	s.flush()
}

// selected runs on the loop, from the controller.
func (s *Session) selected(id family.ID, animate bool) {
	s.selects = append(s.selects, SelectMessage{Type: MessageSelect, ID: string(id), Animate: animate})
}

// flush sends the current view, then pending selections.
func (s *Session) flush() {
	s.dirty = false
	if s.surface == nil || s.surface.Removed() {
		return
	}
	markup, err := s.surface.HTML()
	if err != nil {
		s.log.Error("live render failed", "err", err)
		return
	}
	options, err := s.surface.DropdownHTML()
	if err != nil {
		s.log.Error("live render failed", "err", err)
		return
	}
	v := s.surface.View()
	s.sendJSON(RenderMessage{
		Type:        MessageRender,
		HTML:        markup,
		Options:     options,
		Text:        v.Text,
		Placeholder: v.Placeholder,
		Open:        v.Open,
		Highlight:   v.Highlight,
	})
	for _, m := range s.selects {
		s.sendJSON(m)
	}
	s.selects = nil
}

func (s *Session) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("live encode failed", "err", err)
		return
	}
	s.enqueue(outbound{websocket.TextMessage, data})
}

func (s *Session) sendBinary(data []byte) {
	s.enqueue(outbound{websocket.BinaryMessage, data})
}

func (s *Session) enqueue(m outbound) error {
	select {
	case <-s.closeChan:
		return ErrSessionClosed
	default:
	}
	select {
	case s.send <- m:
		return nil
	case <-s.closeChan:
		return ErrSessionClosed
	default:
		s.log.Warn("live send buffer full, dropping message")
		return errors.New("live: send buffer full")
	}
}

// writer handles writing messages to the WebSocket
func (s *Session) writer() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case m := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(m.kind, m.data); err != nil {
				s.log.Warn("live write failed", "err", err)
				s.conn.Close()
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.conn.Close()
				return
			}
		case <-s.closeChan:
			s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			s.conn.Close()
			return
		}
	}
}

// close destroys the widget and stops the session. Safe to call twice.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.loop.Do(func() {
			if s.controller != nil {
				s.controller.Destroy()
			}
		})
		s.loop.Stop()
		close(s.closeChan)
		s.log.Debug("live session closed")
	})
}

// Do runs fn on the session loop with the controller and waits for it.
func (s *Session) Do(fn func(c *search.Controller)) bool {
	return s.loop.Do(func() { fn(s.controller) })
}
