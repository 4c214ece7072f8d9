// Package websocket pushes view snapshots to the browser so session changes made
// elsewhere flip the screen without a user action.
// file: websocket/connection.go
package websocket

import (
	"encoding/json"
	"net"
	"time"

	"github.com/gorilla/websocket"
	"zeus-tournaments/logger"
	"zeus-tournaments/models"
	"zeus-tournaments/view"
)

// WSConn is an interface for the WebSocket connection.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// Configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Snapshot is what the browser receives after every state change of its view.
type Snapshot struct {
	Action      string              `json:"action"`
	Screen      view.Screen         `json:"screen"`
	Mode        view.AuthMode       `json:"mode"`
	Message     string              `json:"message"`
	Pending     bool                `json:"pending"`
	Tournaments []models.Tournament `json:"tournaments"`
}

// NewSnapshot projects s onto the wire. The session itself never leaves the server.
func NewSnapshot(s view.State) Snapshot {
	return Snapshot{
		Action:      "viewState",
		Screen:      s.Screen(),
		Mode:        s.Mode,
		Message:     s.Message,
		Pending:     s.Pending,
		Tournaments: s.Tournaments,
	}
}

// Connection represents a single WebSocket connection for one browser view.
type Connection struct {
	conn   WSConn
	viewID string

	// dirty holds at most one pending wake-up; the writer always sends the latest state.
	dirty    chan struct{}
	snapshot func() view.State

	// touch marks the view as in use; called on every pong.
	touch func()
}

func newConnection(conn WSConn, viewID string, snapshot func() view.State, touch func()) *Connection {
	if touch == nil {
		touch = func() {}
	}
	return &Connection{
		conn:     conn,
		viewID:   viewID,
		dirty:    make(chan struct{}, 1),
		snapshot: snapshot,
		touch:    touch,
	}
}

// notify tells the writer the view changed. It never blocks.
func (c *Connection) notify() {
	select {
	case c.dirty <- struct{}{}:
	default:
	}
}

// readPump discards inbound messages and keeps the read deadline alive on pongs.
// It returns when the browser goes away.
func (c *Connection) readPump() error {
	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}
	c.conn.SetPongHandler(func(string) error {
		c.touch()
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn.Printf("[readPump] Read error from %v: %v", c.conn.RemoteAddr(), err)
				return err
			}
			return nil
		}
		logger.Debug.Printf("[readPump] Ignoring inbound messageType=%d from view=%s", messageType, c.viewID)
	}
}

// writePump handles outbound messages to the client, including periodic pings.
// It returns once done or viewDone is closed, or a write fails.
func (c *Connection) writePump(done, viewDone <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-viewDone:
			logger.Debug.Printf("[writePump] view=%s closed; closing connection", c.viewID)
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "view closed"))
			return

		case <-done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-c.dirty:
			message, err := json.Marshal(NewSnapshot(c.snapshot()))
			if err != nil {
				logger.Error.Printf("[writePump] Error marshaling snapshot for view=%s: %v", c.viewID, err)
				continue
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn.Printf("[writePump] Error writing to %v: %v", c.conn.RemoteAddr(), err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn.Printf("[writePump] Ping error for %v: %v", c.conn.RemoteAddr(), err)
				return
			}
		}
	}
}
