package gateway

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/soyeahso/evaluet/internal/interview"
	"github.com/soyeahso/evaluet/internal/logging"
)

// ErrConnClosed is returned by writes after the socket was closed.
var ErrConnClosed = errors.New("client connection closed")

const writeTimeout = 10 * time.Second

// wsConn adapts a gorilla socket to interview.ClientConn. Writes are
// serialized; Close is idempotent.
type wsConn struct {
	ID        string
	SessionID string
	socket    *websocket.Conn

	mu     sync.Mutex
	closed bool
}

var _ interview.ClientConn = (*wsConn)(nil)

func newWSConn(socket *websocket.Conn, sessionID string, maxFrame int64) *wsConn {
	if maxFrame > 0 {
		socket.SetReadLimit(maxFrame)
	}
	return &wsConn{ID: uuid.NewString(), SessionID: sessionID, socket: socket}
}

func (c *wsConn) Read() (interview.Frame, error) {
	mt, data, err := c.socket.ReadMessage()
	if err != nil {
		return interview.Frame{}, err
	}
	return interview.Frame{Binary: mt == websocket.BinaryMessage, Data: data}, nil
}

func (c *wsConn) WriteAudio(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	c.socket.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.socket.WriteMessage(websocket.BinaryMessage, data)
}

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	c.socket.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.socket.WriteJSON(v)
}

// Close sends a close frame with code and reason, then drops the socket.
func (c *wsConn) Close(code int, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.socket.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.socket.Close()
}

// connRegistry tracks live interview sockets so shutdown can close them.
type connRegistry struct {
	mu    sync.RWMutex
	conns map[string]*wsConn
	log   *logging.Logger
}

func newConnRegistry(log *logging.Logger) *connRegistry {
	return &connRegistry{conns: make(map[string]*wsConn), log: log}
}

func (r *connRegistry) Add(c *wsConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ID] = c
	r.log.Info().Str("conn", c.ID).Str("session", c.SessionID).Msg("interview socket opened")
}

func (r *connRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	r.log.Info().Str("conn", id).Msg("interview socket closed")
}

func (r *connRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// CloseAll closes every socket with a going-away code.
func (r *connRegistry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.conns {
		c.Close(websocket.CloseGoingAway, "Server shutting down")
		delete(r.conns, id)
	}
}
