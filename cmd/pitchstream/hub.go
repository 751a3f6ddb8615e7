package main

import (
	"sync"

	"github.com/gorilla/websocket"
)

// client represents a connected WebSocket subscriber.
type client struct {
	hub  *hub
	conn *websocket.Conn
	send chan []byte
}

// hub manages subscriber connections and fans out pitch results to all of
// them. It also remembers the most recently broadcast result so a client
// that connects between analysis windows sees the current pitch immediately
// rather than waiting out the rest of the hop interval in silence.
type hub struct {
	mu         sync.RWMutex
	clients    map[*client]bool
	last       []byte
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
}

// newHub creates a new pitch-result broadcast hub.
func newHub() *hub {
	return &hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// run starts the hub's event loop. It must be driven from its own goroutine.
func (h *hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			last := h.last
			h.mu.Unlock()

			if last != nil {
				c.send <- last
			}

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			h.last = message
			h.mu.Unlock()

			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					go func(c *client) {
						h.unregister <- c
					}(c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// broadcastResult sends a result to every connected subscriber, dropping it
// if the hub's internal queue is full. The result is still remembered as the
// replay value for the next client to register, even when dropped here.
func (h *hub) broadcastResult(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.mu.Lock()
		h.last = message
		h.mu.Unlock()
	}
}

// clientCount returns the number of connected subscribers.
func (h *hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func (c *client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
