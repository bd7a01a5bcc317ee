// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package hub tracks connected chat WebSocket clients and fans messages
// out to them.
package hub

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Keepalive timing shared by every WebSocket endpoint.
const (
	WriteWait  = 10 * time.Second
	PongWait   = 60 * time.Second
	PingPeriod = (PongWait * 9) / 10
)

// ErrClientClosed is returned when writing to a closed client.
var ErrClientClosed = errors.New("client closed")

// Client is one WebSocket connection. gorilla/websocket allows a single
// concurrent writer, so every write goes through writeMu.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  atomic.Bool
}

// NewClient wraps conn.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

// Send writes msg as a JSON text frame.
func (c *Client) Send(msg interface{}) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
	return c.conn.WriteJSON(msg)
}

func (c *Client) sendPrepared(pm *websocket.PreparedMessage) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
	return c.conn.WritePreparedMessage(pm)
}

// KeepAlive arms the read deadline and pings the peer every PingPeriod
// until the returned stop function is called or a ping fails.
func (c *Client) KeepAlive() (stop func()) {
	c.conn.SetReadDeadline(time.Now().Add(PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(PongWait))
		return nil
	})

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(PingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.writeMu.Lock()
				err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(WriteWait))
				c.writeMu.Unlock()
				if err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// CloseWith sends a close frame with code and reason, then closes the
// connection. Later calls are no-ops.
func (c *Client) CloseWith(code int, reason string) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.writeMu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}

// Close closes the connection with a normal closure.
func (c *Client) Close() error {
	return c.CloseWith(websocket.CloseNormalClosure, "")
}

// Hub is the set of connected chat clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Add registers a client.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Remove unregisters a client. Removing an unknown client is a no-op.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

// Broadcast sends msg to every client and returns how many received it.
// Clients that fail the write are dropped from the hub.
func (h *Hub) Broadcast(msg interface{}) (int, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return 0, err
	}
	pm, err := websocket.NewPreparedMessage(websocket.TextMessage, data)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, c := range h.snapshot() {
		if err := c.sendPrepared(pm); err != nil {
			log.Printf("hub: dropping client: %v", err)
			h.Remove(c)
			continue
		}
		sent++
	}
	return sent, nil
}

// CloseAll sends a going-away close frame to every client and empties the hub.
func (h *Hub) CloseAll() {
	clients := h.snapshot()
	if len(clients) > 0 {
		log.Printf("hub: closing %d client(s)", len(clients))
	}
	for _, c := range clients {
		c.CloseWith(websocket.CloseGoingAway, "server shutting down")
		h.Remove(c)
	}
}
