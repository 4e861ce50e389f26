package realtime

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Hub owns the set of live connections and fans broadcast messages out to
// every open one. No other component touches the connection set; all
// outward communication goes through Broadcast.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     zerolog.Logger
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "realtime-hub").Logger(),
	}
}

// Run processes client lifecycle and broadcast events until ctx is
// canceled, then closes every remaining client so shutdown leaves no
// orphaned connections.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAllClients()
			return ctx.Err()

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info().Int("total_clients", total).Msg("client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info().Int("total_clients", total).Msg("client disconnected")

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

// Broadcast queues a message for delivery to all open connections. The send
// never blocks event handling; if the queue is full the message is dropped
// and logged.
func (h *Hub) Broadcast(event string, data interface{}) {
	message := Message{Type: event, Data: data}
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn().Str("event", event).Msg("broadcast queue full, dropping message")
	}
}

// add registers a client; a hub that has already shut down refuses it
func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// drop unregisters a client. After shutdown the run loop no longer
// receives, so the send is abandoned instead of blocking the read pump.
func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of open connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// deliver pushes a message onto every client's send queue. A client that
// cannot keep up is dropped; its writePump notices the closed channel.
func (h *Hub) deliver(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var stalled []*Client
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			stalled = append(stalled, client)
		}
	}
	for _, client := range stalled {
		close(client.send)
		delete(h.clients, client)
		h.logger.Warn().Msg("dropping stalled client")
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.logger.Info().Msg("closed all clients during shutdown")
}
