// Package ws fans sprint balance updates out to websocket subscribers.
// Subscribers are grouped into rooms keyed by sprint id.
package ws

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sprintsense/balance-service/pkg/logger/sl"
)

var ErrClientClosed = errors.New("client closed")

var (
	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sprint_balance_ws_clients",
		Help: "Number of connected balance websocket clients",
	})

	wsBroadcasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sprint_balance_ws_messages_total",
			Help: "Broadcast deliveries to websocket clients by result",
		},
		[]string{"result"},
	)
)

type Hub struct {
	log *slog.Logger

	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	closed bool
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:   log,
		rooms: make(map[string]map[*Client]struct{}),
	}
}

// Register adds c to room and reports whether it joined. Registering the
// same client twice is a no-op. After Close, c is closed instead.
func (h *Hub) Register(room string, c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		_ = c.Close()
		return false
	}

	clients, ok := h.rooms[room]
	if !ok {
		clients = make(map[*Client]struct{})
		h.rooms[room] = clients
	}

	if _, ok := clients[c]; ok {
		return true
	}

	clients[c] = struct{}{}
	wsClients.Inc()

	h.log.Debug("websocket client joined",
		slog.String("room", room),
		slog.String("client_id", c.ID()),
		slog.Int("room_size", len(clients)),
	)

	return true
}

// Unregister removes c from room and reports whether it was present.
// Empty rooms are dropped.
func (h *Hub) Unregister(room string, c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.remove(room, c)
}

func (h *Hub) remove(room string, c *Client) bool {
	clients, ok := h.rooms[room]
	if !ok {
		return false
	}

	if _, ok := clients[c]; !ok {
		return false
	}

	delete(clients, c)
	wsClients.Dec()

	if len(clients) == 0 {
		delete(h.rooms, room)
	}

	h.log.Debug("websocket client left", slog.String("room", room), slog.String("client_id", c.ID()))

	return true
}

// Broadcast sends msg to every client in room and returns the number of
// successful deliveries. Clients whose write fails are closed and removed;
// the remaining clients still receive the message.
func (h *Hub) Broadcast(room string, msg Message) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	var (
		delivered int
		failed    []*Client
	)

	for _, c := range targets {
		if err := c.Send(msg); err != nil {
			h.log.Warn("failed to deliver websocket message",
				slog.String("room", room),
				slog.String("client_id", c.ID()),
				sl.Err(err),
			)
			wsBroadcasts.WithLabelValues("failed").Inc()
			failed = append(failed, c)

			continue
		}

		wsBroadcasts.WithLabelValues("delivered").Inc()
		delivered++
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, c := range failed {
			h.remove(room, c)
		}
		h.mu.Unlock()

		for _, c := range failed {
			_ = c.Close()
		}
	}

	return delivered
}

// Count returns the number of clients subscribed to room.
func (h *Hub) Count(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[room])
}

// Close disconnects every client and empties the hub. Later registrations
// are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]map[*Client]struct{})
	h.closed = true
	h.mu.Unlock()

	for _, clients := range rooms {
		for c := range clients {
			wsClients.Dec()
			_ = c.Close()
		}
	}
}
