// Package websocket implements the dashboard push channel: a hub-client
// fan-out of newly created events and alerts over gorilla/websocket.
// Delivery is at-least-once per connected client with no ordering
// guarantee across clients and no resumption or replay.
package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/pratik-mahalle/vigil/internal/pkg/logger"
	"github.com/pratik-mahalle/vigil/internal/pkg/metrics"
)

// Message is one frame pushed to dashboard clients.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     *logger.Logger
}

// NewHub creates a hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     log,
	}
}

// Run services the hub until ctx is canceled. Run it in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			metrics.SetWebsocketClients(n)
			h.logger.With("total_clients", n).Info("Dashboard client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.SetWebsocketClients(n)
			h.logger.With("total_clients", n).Info("Dashboard client disconnected")

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client queue full: skip rather than stall the hub
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			metrics.SetWebsocketClients(0)
			h.logger.Info("Dashboard hub stopped")
			return
		}
	}
}

// Broadcast queues a message for every connected client. Non-blocking:
// a full hub queue drops the message rather than stalling the caller.
func (h *Hub) Broadcast(messageType string, data interface{}) {
	msg := Message{Type: messageType, Data: data, Timestamp: time.Now().UTC()}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("Dashboard broadcast queue full, message dropped")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
