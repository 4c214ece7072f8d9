// Package websocket: contains the WebSocket handler and related functions
// file: websocket/handler.go
package websocket

import (
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"zeus-tournaments/logger"
	"zeus-tournaments/middleware"
	"zeus-tournaments/view"
)

// Views is what the handler needs from the view registry.
type Views interface {
	View(id string) (*view.Loop, error)
	Touch(id string)
}

// Hub tracks every open connection.
type Hub struct {
	log    *logrus.Logger
	gauges Gauges

	mu    sync.Mutex
	conns map[*Connection]bool

	originsMu sync.RWMutex
	origins   map[string]bool
}

// NewHub creates a hub logging to log (logger.L when nil). A nil gauges sink publishes nothing.
func NewHub(log *logrus.Logger, gauges Gauges) *Hub {
	if log == nil {
		log = logger.L
	}
	if gauges == nil {
		gauges = noopGauges{}
	}
	return &Hub{
		log:     log,
		gauges:  gauges,
		conns:   make(map[*Connection]bool),
		origins: make(map[string]bool),
	}
}

// AllowOrigins accepts upgrades from these origins in addition to same-host ones.
func (h *Hub) AllowOrigins(origins ...string) {
	h.originsMu.Lock()
	defer h.originsMu.Unlock()
	for _, o := range origins {
		if o = strings.TrimRight(o, "/"); o != "" {
			h.origins[o] = true
		}
	}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	h.originsMu.RLock()
	allowed := h.origins[origin]
	h.originsMu.RUnlock()
	if allowed {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	h.conns[c] = true
	n := len(h.conns)
	h.mu.Unlock()
	h.publishConnections(n)
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	delete(h.conns, c)
	n := len(h.conns)
	h.mu.Unlock()
	h.publishConnections(n)
}

// ServeWs upgrades the request and streams the browser's view until either side goes away.
func (h *Hub) ServeWs(views Views) gin.HandlerFunc {
	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}

	return func(c *gin.Context) {
		id := middleware.ViewID(c)
		if id == "" {
			logger.Error.Println("[ServeWs] No view id; is ViewRequired installed?")
			c.String(http.StatusInternalServerError, "view unavailable")
			return
		}
		loop, err := views.View(id)
		if err != nil {
			logger.Error.Printf("[ServeWs] No view for %s: %v", id, err)
			c.String(http.StatusInternalServerError, "view unavailable")
			return
		}

		wsConn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade has already replied with an HTTP error.
			logger.Error.Printf("[ServeWs] WebSocket upgrade error: %v", err)
			return
		}

		remote := c.Request.RemoteAddr
		middleware.LogWebSocketConnect(h.log, remote, id)
		err = h.Serve(wsConn, loop, func() { views.Touch(id) })
		middleware.LogWebSocketDisconnect(h.log, remote, id, err)
	}
}

// Serve pushes loop's state over conn until the browser disconnects or the view closes.
func (h *Hub) Serve(conn WSConn, loop *view.Loop, touch func()) error {
	c := newConnection(conn, loop.ID(), loop.Snapshot, touch)
	h.register(c)
	defer h.unregister(c)

	stop := loop.Watch(func(view.State) { c.notify() })
	defer stop()
	c.notify()

	done := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		c.writePump(done, loop.Done())
		close(writerDone)
	}()

	err := c.readPump()
	close(done)
	<-writerDone
	return err
}
