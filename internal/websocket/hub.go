package websocket

import (
	"context"
	"log/slog"

	"altcad-web/internal/observability"
)

// delivery is a frame addressed to one user's inbox.
type delivery struct {
	userID    int64
	frameType string
	frame     []byte
}

// Hub maintains active inbox connections and routes frames to them. A user
// may hold several connections (multiple tabs); each receives every frame
// addressed to that user.
type Hub struct {
	// Registered clients by user id
	clients map[int64]map[*Client]bool

	deliver    chan *delivery
	register   chan *Client
	unregister chan *Client

	// Shutdown signal
	done chan struct{}
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		deliver:    make(chan *delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			slog.Info("inbox hub shutting down gracefully")
			return ctx.Err()

		case client := <-h.register:
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			observability.InboxConnectionsActive.Inc()
			slog.Info("inbox client registered",
				slog.String("user", client.username),
				slog.Int64("user_id", client.userID))

		case client := <-h.unregister:
			h.unregisterClient(client)

		case d := <-h.deliver:
			for client := range h.clients[d.userID] {
				select {
				case client.send <- d.frame:
					observability.InboxDeliveriesTotal.WithLabelValues(d.frameType).Inc()
				default:
					// Client's send buffer is full, close connection
					h.closeClientSend(client)
					delete(h.clients[d.userID], client)
				}
			}
		}
	}
}

// unregisterClient safely removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	h.closeClientSend(client)
	observability.InboxConnectionsActive.Dec()
	slog.Info("inbox client unregistered",
		slog.String("user", client.username),
		slog.Int64("user_id", client.userID))

	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
}

// closeClientSend safely closes a client's send channel
func (h *Hub) closeClientSend(client *Client) {
	select {
	case <-client.send:
		// Channel already closed
	default:
		close(client.send)
	}
}

// shutdown performs graceful cleanup of all connections
func (h *Hub) shutdown() {
	close(h.done)

	for userID, clients := range h.clients {
		for client := range clients {
			h.closeClientSend(client)
			slog.Info("closed inbox connection", slog.Int64("user_id", userID))
		}
	}

	slog.Info("inbox hub shutdown complete")
}

// Deliver routes a frame to every connection of one user's inbox.
func (h *Hub) Deliver(userID int64, frameType string, frame []byte) {
	h.deliver <- &delivery{userID: userID, frameType: frameType, frame: frame}
}

// Register registers a client with the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
