package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-ride/pkg/metrics"
	"github.com/google/uuid"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// ConnectionHub keeps the active websocket connection of every entity.
type ConnectionHub struct {
	clients map[uuid.UUID]*Conn
	l       logger.Logger
	mu      sync.Mutex
}

func NewConnHub(l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		clients: make(map[uuid.UUID]*Conn),
		l:       l,
	}
}

// Add registers a connection. An existing connection of the same entity is closed and replaced.
func (h *ConnectionHub) Add(newConn *Conn) error {
	if newConn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	existing, replaced := h.clients[newConn.entityID]
	h.clients[newConn.entityID] = newConn
	h.mu.Unlock()

	ctx := wrap.WithAction(context.Background(), "add_ws_connection")
	if replaced {
		h.l.Warn(ctx, "replacing existing connection", "entity_id", existing.entityID)
		if err := existing.Close(); err != nil {
			h.l.Warn(ctx, "failed to close existing conn", "entity_id", existing.entityID, "error", err.Error())
		}
		return nil
	}

	metrics.WebSocketConnectionsGauge.WithLabelValues(metrics.ServiceLabel()).Inc()
	return nil
}

// Remove drops conn from the hub if it is still the registered connection of its entity.
func (h *ConnectionHub) Remove(conn *Conn) {
	if conn == nil {
		return
	}

	h.mu.Lock()
	current, ok := h.clients[conn.entityID]
	if ok && current == conn {
		delete(h.clients, conn.entityID)
	}
	h.mu.Unlock()

	if ok && current == conn {
		metrics.WebSocketConnectionsGauge.WithLabelValues(metrics.ServiceLabel()).Dec()
	}
	_ = conn.Close()
}

// SendTo sends a message to one entity.
// Returns ErrConnIsNotFound if the entity has no connection.
func (h *ConnectionHub) SendTo(id uuid.UUID, msg any) error {
	conn, err := h.GetConn(id)
	if err != nil {
		return err
	}
	return conn.Send(msg)
}

// Close closes every websocket connection.
func (h *ConnectionHub) Close() {
	h.mu.Lock()
	clients := make([]*Conn, 0, len(h.clients))
	for _, conn := range h.clients {
		clients = append(clients, conn)
	}
	h.mu.Unlock()

	for _, conn := range clients {
		h.Remove(conn)
	}

	h.l.Info(wrap.WithAction(context.Background(), "hub_close"), "all websocket connections closed gracefully", "count", len(clients))
}

// Count returns the number of connected entities.
func (h *ConnectionHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// GetConn returns the connection of id.
func (h *ConnectionHub) GetConn(id uuid.UUID) (*Conn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.clients[id]
	if !ok {
		return nil, ErrConnIsNotFound
	}
	return conn, nil
}
