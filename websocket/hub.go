package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"skillswap-server/logger"
)

// Client is one user's live websocket connection.
type Client struct {
	Hub    *Hub
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
}

// Message is the envelope pushed to connected clients.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub tracks connected clients and fans notification pushes out to them.
// A user has at most one live connection; a new one replaces the old.
type Hub struct {
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message

	log *logger.Logger
	mu  sync.RWMutex
}

func NewHub(baseLog *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message),
		log:        baseLog.With("component", "ws_hub"),
	}
}

// Run is the hub's main loop. Call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if prev, ok := h.clients[client.UserID]; ok {
				close(prev.Send)
			}
			h.clients[client.UserID] = client
			h.mu.Unlock()
			h.log.Debug("client connected", "user_id", client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.UserID]; ok && current == client {
				delete(h.clients, client.UserID)
				close(client.Send)
			}
			h.mu.Unlock()
			h.log.Debug("client disconnected", "user_id", client.UserID)

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

// SendToUser pushes a message to one user's connection. Users without an
// open connection are skipped; they see the persisted notification later.
func (h *Hub) SendToUser(userID uuid.UUID, message *Message) {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error("failed to marshal message", "err", err)
		return
	}

	select {
	case client.Send <- data:
	default:
		h.log.Warn("client send buffer full, dropping message", "user_id", userID)
	}
}

// Broadcast pushes a message to every connected client.
func (h *Hub) Broadcast(message *Message) {
	h.broadcast <- message
}

func (h *Hub) fanOut(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error("failed to marshal message", "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for userID, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.log.Warn("client send buffer full, dropping message", "user_id", userID)
		}
	}
}

// ConnectedCount reports how many users currently hold a live connection.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
