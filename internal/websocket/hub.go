package websocket

import (
	"log/slog"
	"sync"

	"github.com/princekumarofficial/media-service/internal/types"
)

// Hub maintains the set of active clients and broadcasts events to them.
// Clients are keyed by curator identity (type:id).
type Hub struct {
	// Registered clients mapped by curator key
	clients map[string]*Client

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex to protect clients map
	mu sync.RWMutex

	// Channel to broadcast events
	broadcast chan *BroadcastMessage
}

// BroadcastMessage represents a message to be broadcast to specific curators
type BroadcastMessage struct {
	CuratorKeys []string     `json:"curator_keys"`
	Event       *types.Event `json:"event"`
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			// If the curator already has a connection, close the old one
			if existingClient, exists := h.clients[client.curatorKey]; exists {
				close(existingClient.send)
				slog.Info("Replaced existing WebSocket connection", slog.String("curator", client.curatorKey))
			}
			h.clients[client.curatorKey] = client
			h.mu.Unlock()
			slog.Info("WebSocket client connected", slog.String("curator", client.curatorKey))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.curatorKey]; ok {
				delete(h.clients, client.curatorKey)
				close(client.send)
				slog.Info("WebSocket client disconnected", slog.String("curator", client.curatorKey))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.broadcastToCurators(message.CuratorKeys, message.Event)
		}
	}
}

// RegisterClient registers a new client
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// BroadcastToCurators sends an event to specific curators
func (h *Hub) BroadcastToCurators(curatorKeys []string, event *types.Event) {
	message := &BroadcastMessage{
		CuratorKeys: curatorKeys,
		Event:       event,
	}

	select {
	case h.broadcast <- message:
	default:
		slog.Warn("Broadcast channel is full, dropping message")
	}
}

// BroadcastToCurator sends an event to a specific curator
func (h *Hub) BroadcastToCurator(curatorKey string, event *types.Event) {
	h.BroadcastToCurators([]string{curatorKey}, event)
}

// broadcastToCurators is the internal method that actually sends messages
func (h *Hub) broadcastToCurators(curatorKeys []string, event *types.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, curatorKey := range curatorKeys {
		if client, ok := h.clients[curatorKey]; ok {
			err := client.SendEvent(event)
			if err != nil {
				slog.Error("Failed to send event to client",
					slog.String("curator", curatorKey),
					slog.String("error", err.Error()))
				// Remove the client if sending fails
				go func(c *Client) {
					h.unregister <- c
				}(client)
			}
		}
	}
}

// IsCuratorConnected checks if a curator is currently connected
func (h *Hub) IsCuratorConnected(curatorKey string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, exists := h.clients[curatorKey]
	return exists
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
