// Package realtime maintains per-conversation broadcast rooms over
// websockets and adapts socket traffic onto the chat pipeline.
package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client wraps one websocket connection. Writes are serialized because
// gorilla connections do not support concurrent writers.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

// Send writes one JSON event to the peer.
func (c *Client) Send(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub tracks which clients joined which conversation room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{})}
}

// Join adds a client to a conversation room. Idempotent; there is no leave
// operation short of disconnecting.
func (h *Hub) Join(conversationID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[conversationID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[conversationID] = room
	}
	room[c] = struct{}{}
}

// Remove drops the client from every room. Called on disconnect.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conversationID, room := range h.rooms {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, conversationID)
		}
	}
}

// RoomSize reports current membership of a conversation room.
func (h *Hub) RoomSize(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}

// Broadcast sends an event to every client in the room, including the
// sender. Clients whose connection has gone away just error out of Send;
// their read loop cleans them up.
func (h *Hub) Broadcast(conversationID string, v interface{}) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[conversationID]))
	for c := range h.rooms[conversationID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.Send(v)
	}
}
