package net

import (
	"sync"

	"go.uber.org/zap"
)

// Hub tracks connected clients and broadcasts outbound events to all of
// them. It is registered as an outbox sink, so Deliver runs on the game loop
// and must never block.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint64]*Client
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[uint64]*Client),
		log:     log,
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info("client connected", zap.Uint64("client", c.ID), zap.Int("clients", n))
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info("client disconnected", zap.Uint64("client", c.ID), zap.Int("clients", n))
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Deliver encodes the event once and queues it on every client.
func (h *Hub) Deliver(name string, payload []byte) {
	frame, err := EncodeEvent(name, payload)
	if err != nil {
		h.log.Error("event encode failed", zap.String("event", name), zap.Error(err))
		return
	}
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	// Send may close a slow client, which re-enters remove; the read lock is
	// already released.
	for _, c := range targets {
		c.Send(frame)
	}
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	for _, c := range targets {
		c.Close()
	}
}
