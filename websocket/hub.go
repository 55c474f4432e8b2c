package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Event types pushed to connected admin dashboards
const (
	EventTicketCreated = "ticket_created"
	EventTicketStatus  = "ticket_status"
)

// sendBufferSize bounds how far a slow dashboard may fall behind before
// events are dropped for it.
const sendBufferSize = 16

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Client represents a connected admin dashboard. The connection is written
// only by the client's writePump; everyone else queues onto send.
type Client struct {
	conn *websocket.Conn
	send chan Notification
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan Notification, sendBufferSize),
	}
}

// writePump drains the send queue onto the connection. It is the sole writer
// for the connection, so broadcasts from concurrent requests never interleave.
func (c *Client) writePump() {
	defer c.conn.Close()
	for notification := range c.send {
		if err := c.conn.WriteJSON(notification); err != nil {
			return
		}
	}
}

// Hub maintains the set of connected dashboards and broadcasts booking events
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
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				// Safe to close here: Broadcast holds the read lock while
				// queueing, so no send can race this close
				close(client.send)
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount reports how many dashboards are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues a notification for every connected dashboard. A dashboard
// whose queue is full misses the event rather than stalling the request.
func (h *Hub) Broadcast(notification Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- notification:
		default:
		}
	}
}

// NotifyTicketCreated pushes a new booking request to the dashboards
func (h *Hub) NotifyTicketCreated(ticketData interface{}) {
	h.Broadcast(Notification{
		Type:    EventTicketCreated,
		Message: "New flight booking request received",
		Data:    ticketData,
	})
}

// NotifyTicketStatus pushes a status transition to the dashboards
func (h *Hub) NotifyTicketStatus(ticketData interface{}) {
	h.Broadcast(Notification{
		Type:    EventTicketStatus,
		Message: "Booking request status updated",
		Data:    ticketData,
	})
}
