// internal/realtime/hub.go

package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/spontanapp/spontan-backend/internal/lobby"
	"github.com/spontanapp/spontan-backend/internal/ping"
	"github.com/spontanapp/spontan-backend/internal/synchronicity"
)

// Event types pushed to clients.
const (
	EventPing          = "ping"
	EventMatch         = "match"
	EventChatMessage   = "chat_message"
	EventSynchronicity = "synchronicity"
	EventLobbyCreated  = "lobby_created"
)

// Event is the envelope every websocket push uses.
type Event struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

type broadcast struct {
	userIDs []string
	event   Event
}

// Hub maintains active websocket connections and fans events out to the
// users they concern.
type Hub struct {
	clients    map[string]*Client
	clientsMux sync.RWMutex

	broadcast  chan broadcast
	register   chan *Client
	unregister chan *Client

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan broadcast, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (h *Hub) Run() {
	defer h.cleanup()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.send(msg)

		case <-h.ctx.Done():
			return
		}
	}
}

// Shutdown stops the hub loop and closes every connection.
func (h *Hub) Shutdown() {
	h.cancel()
}

func (h *Hub) registerClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	// One connection per user; a new one replaces the old.
	if old, exists := h.clients[client.userID]; exists {
		old.Close()
	}

	h.clients[client.userID] = client
	SetConnectedClients(len(h.clients))

	log.Printf("User %s connected. Total clients: %d", client.userID, len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	if current, exists := h.clients[client.userID]; exists && current == client {
		client.Close()
		delete(h.clients, client.userID)
		SetConnectedClients(len(h.clients))

		log.Printf("User %s disconnected. Total clients: %d", client.userID, len(h.clients))
	}
}

func (h *Hub) send(msg broadcast) {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	data, err := json.Marshal(msg.event)
	if err != nil {
		log.Printf("Error marshalling event: %v", err)
		return
	}

	for _, userID := range msg.userIDs {
		client, exists := h.clients[userID]
		if !exists {
			continue
		}

		select {
		case client.send <- data:
			RecordEventDelivered(msg.event.Type)
		default:
			// Slow consumer; drop the connection.
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) cleanup() {
	h.clientsMux.Lock()
	for _, client := range h.clients {
		client.Close()
	}
	h.clients = make(map[string]*Client)
	h.clientsMux.Unlock()
}

func (h *Hub) push(userIDs []string, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshalling %s payload: %v", eventType, err)
		return
	}

	event := Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- broadcast{userIDs: userIDs, event: event}:
	case <-h.ctx.Done():
	}
}

// NotifyPing implements ping.Notifier.
func (h *Hub) NotifyPing(toUser string, p *ping.Ping) {
	h.push([]string{toUser}, EventPing, p)
}

// NotifyMatch implements ping.Notifier.
func (h *Hub) NotifyMatch(userIDs []string, m *ping.Match) {
	h.push(userIDs, EventMatch, m)
}

// NotifyMessage implements ping.Notifier.
func (h *Hub) NotifyMessage(userIDs []string, msg *ping.ChatMessage) {
	h.push(userIDs, EventChatMessage, msg)
}

// NotifySynchronicity implements synchronicity.Notifier.
func (h *Hub) NotifySynchronicity(userIDs []string, s *synchronicity.Synchronicity) {
	h.push(userIDs, EventSynchronicity, s)
}

// NotifyLobbyCreated implements lobby.Notifier.
func (h *Hub) NotifyLobbyCreated(userIDs []string, l *lobby.Lobby) {
	h.push(userIDs, EventLobbyCreated, l)
}
