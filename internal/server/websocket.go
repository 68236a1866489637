package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/sitekit/sitekit/internal/logging"
)

const (
	// ReloadPath is the websocket endpoint the injected page script dials.
	ReloadPath = "/__sitekit/reload"

	// reloadMessage tells connected pages to reload themselves.
	reloadMessage = "reload"

	writeWait      = 10 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
)

// Hub tracks the connected live-reload clients. Broadcast fans the reload
// message out to every client; a client whose send buffer is full is
// dropped rather than blocking the hub.
type Hub struct {
	host string
	port int
	log  *logging.Logger

	register   chan *client
	unregister chan *client
	broadcast  chan string

	done chan struct{} // closed when Run exits

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan string
	hub  *Hub
}

func NewHub(host string, port int, log *logging.Logger) *Hub {
	return &Hub{
		host:       host,
		port:       port,
		log:        log.WithComponent("reload"),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan string, 8),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
	}
}

// Broadcast queues a reload signal for every connected page. Never blocks;
// if the hub's queue is full the pending signal already covers the change.
func (h *Hub) Broadcast() {
	select {
	case h.broadcast <- reloadMessage:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run processes register/unregister/broadcast events until ctx is done,
// then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client connected", "total", total)

		case c := <-h.unregister:
			h.drop(c)

		case msg := <-h.broadcast:
			h.mu.RLock()
			var stalled []*client
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					stalled = append(stalled, c)
				}
			}
			h.mu.RUnlock()
			for _, c := range stalled {
				h.drop(c)
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		close(c.send)
		if c.conn != nil {
			c.conn.Close(websocket.StatusNormalClosure, "")
		}
		h.log.Debug("client disconnected", "total", total)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		if c.conn != nil {
			c.conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		delete(h.clients, c)
	}
}

// ServeHTTP upgrades a reload connection and runs its pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", err)
		return
	}

	c := &client{conn: conn, send: make(chan string, 8), hub: h}
	go c.writePump()
	go c.readPump()
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

// checkOrigin accepts the configured host plus the localhost forms, all on
// the configured port. Non-browser clients without an Origin header are
// allowed; they can already reach the socket directly.
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	allowed := []string{
		fmt.Sprintf("%s:%d", h.host, h.port),
		fmt.Sprintf("localhost:%d", h.port),
		fmt.Sprintf("127.0.0.1:%d", h.port),
	}
	for _, a := range allowed {
		if u.Host == a {
			return true
		}
	}
	return false
}

// readPump drains the connection so pings are answered. Reload clients
// never send meaningful data, so there is no idle deadline here; an open
// page may sit quiet indefinitely. Dead connections surface through the
// write pump's pings instead.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
	}()
	c.conn.SetReadLimit(maxMessageSize)

	for {
		if _, _, err := c.conn.Read(context.Background()); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, []byte(msg))
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
