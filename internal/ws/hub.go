// Package ws fans snapshot envelopes out to websocket clients.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/Ko-stant/frontwatch/internal/protocol"
)

const writeTimeout = 3 * time.Second

// Client is one connected panel. ID identifies it as a landmass consumer.
type Client struct {
	ID   string
	Conn *websocket.Conn
}

type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]*Client
	sequence atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*Client)}
}

func (h *Hub) Add(conn *websocket.Conn) *Client {
	c := &Client{ID: uuid.New().String(), Conn: conn}
	h.mu.Lock()
	h.clients[conn] = c
	h.mu.Unlock()
	return c
}

func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Envelope encodes payload under the next sequence number.
func (h *Hub) Envelope(session, kind string, payload any) ([]byte, error) {
	return json.Marshal(protocol.PatchEnvelope{
		Sequence: h.sequence.Add(1),
		Session:  session,
		Type:     kind,
		Payload:  payload,
	})
}

// Publish sends one envelope to every client.
func (h *Hub) Publish(session, kind string, payload any) error {
	b, err := h.Envelope(session, kind, payload)
	if err != nil {
		return err
	}
	h.Broadcast(b)
	return nil
}

// Send writes one envelope to a single client.
func (h *Hub) Send(ctx context.Context, c *Client, session, kind string, payload any) error {
	b, err := h.Envelope(session, kind, payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.Conn.Write(ctx, websocket.MessageText, b)
}

// Broadcast writes message to every client, dropping those that fail.
func (h *Hub) Broadcast(message []byte) {
	h.mu.Lock()
	for conn := range h.clients {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "")
			delete(h.clients, conn)
		}
	}
	h.mu.Unlock()
}
