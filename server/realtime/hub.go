package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"barbuddy/pkg/logger"
	"barbuddy/pkg/metrics"
)

// Hub tracks connected clients keyed by user ID. A user may hold several
// connections at once; delivery fans out to all of them.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-h.ctx.Done():
			h.closeAllClients()
			return
		}
	}
}

// Register queues a client for registration.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister queues a client for removal.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[client.UserID]
	if !ok {
		conns = make(map[*Client]bool)
		h.clients[client.UserID] = conns
	}
	conns[client] = true

	metrics.WebsocketConnections.Inc()

	logger.WithFields(map[string]interface{}{
		"user_id":     client.UserID.String(),
		"client_id":   client.ID.String(),
		"connections": len(conns),
	}).Info("Websocket client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}

	delete(conns, client)
	if len(conns) == 0 {
		delete(h.clients, client.UserID)
	}
	client.markClosed()

	metrics.WebsocketConnections.Dec()

	logger.WithFields(map[string]interface{}{
		"user_id":   client.UserID.String(),
		"client_id": client.ID.String(),
	}).Info("Websocket client unregistered")
}

// SendToUser fans a payload out to every connection the user holds.
// It returns the number of connections the payload was queued on.
func (h *Hub) SendToUser(userID uuid.UUID, payload any) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.clients[userID] {
		if client.Enqueue(payload) {
			delivered++
		}
	}
	return delivered
}

// IsUserOnline reports whether the user has at least one live connection.
func (h *Hub) IsUserOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// OnlineUsers returns the IDs of all users with a live connection.
func (h *Hub) OnlineUsers() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]uuid.UUID, 0, len(h.clients))
	for id := range h.clients {
		users = append(users, id)
	}
	return users
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conns := range h.clients {
		for client := range conns {
			client.CloseConn()
			client.markClosed()
			metrics.WebsocketConnections.Dec()
		}
	}
	h.clients = make(map[uuid.UUID]map[*Client]bool)
}

// Close shuts the hub down and disconnects every client.
func (h *Hub) Close() {
	h.cancel()
	<-h.done
}
