package websocket

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/justda2ofus/memories_backend/models"
)

// Define event types
const (
	EventTypeConnected      = "connected"
	EventTypeFeed           = "feed"
	EventTypeUploadProgress = "upload_progress"
)

// Outgoing events a slow client has not drained yet are buffered up to
// this many; past that they are dropped rather than stalling broadcasts.
const clientSendBuffer = 256

// Event represents a message sent over WebSocket
type Event struct {
	Type     string      `json:"type"`
	Message  string      `json:"message,omitempty"`
	Session  string      `json:"session,omitempty"`
	Progress int         `json:"progress,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

// Client represents a connected WebSocket client. Every outgoing event
// goes through the send channel so exactly one goroutine ever writes to
// the connection.
type Client struct {
	Conn *websocket.Conn
	send chan Event
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		Conn: conn,
		send: make(chan Event, clientSendBuffer),
	}
}

// writePump drains the send channel onto the connection. It is the only
// goroutine allowed to write to Conn, and it closes the connection once
// the channel is closed on unregister.
func (c *Client) writePump() {
	for event := range c.send {
		if err := c.Conn.WriteJSON(event); err != nil {
			log.Printf("WebSocket write error: %v", err)
		}
	}
	c.Conn.Close()
}

// enqueue hands one event to the client's writer without blocking.
func (c *Client) enqueue(event Event) {
	select {
	case c.send <- event:
	default:
		log.Printf("WebSocket client send buffer full, dropping %s event", event.Type)
	}
}

// Hub maintains the set of active clients and broadcasts events
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			go client.writePump()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends an event to every connected client
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		client.enqueue(event)
	}
}

// BroadcastFeed pushes a full feed snapshot to every connected client
func (h *Hub) BroadcastFeed(posts []models.Post) {
	h.Broadcast(Event{
		Type: EventTypeFeed,
		Data: posts,
	})
}

// BroadcastProgress pushes one composer batch progress value
func (h *Hub) BroadcastProgress(session string, progress int) {
	h.Broadcast(Event{
		Type:     EventTypeUploadProgress,
		Session:  session,
		Progress: progress,
	})
}
