// Package stream pushes ticket events to connected websocket clients.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	"github.com/deskline/service-desk/internal/events"
	"github.com/deskline/service-desk/internal/policy"
)

// ErrBacklogFull is returned when the broadcast queue cannot take another event.
var ErrBacklogFull = errors.New("stream backlog full")

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one subscribed connection and the identity behind it.
type Client struct {
	Conn   Conn
	UserID string
	Role   policy.Role
}

// Message is a serialized event and the requester it concerns. Internal
// messages are withheld from roles that cannot work tickets.
type Message struct {
	RequesterID string
	Internal    bool
	Data        []byte
}

// Hub fans ticket events out to clients allowed to read them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	mutex      sync.Mutex
	logger     *zap.Logger
}

// NewHub builds a hub; buffer sizes the broadcast queue.
func NewHub(logger *zap.Logger, buffer int) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, buffer),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Conn.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.logger.Debug("stream client connected", zap.String("user_id", client.UserID))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Conn.Close()
			}
			h.mutex.Unlock()

		case msg := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if !client.receives(msg) {
					continue
				}
				if err := client.Conn.WriteMessage(websocket.TextMessage, msg.Data); err != nil {
					h.logger.Debug("dropping stream client", zap.String("user_id", client.UserID), zap.Error(err))
					client.Conn.Close()
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register adds a client. It returns false if ctx ends first.
func (h *Hub) Register(ctx context.Context, client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-ctx.Done():
		return false
	}
}

// Unregister removes and closes a client.
func (h *Hub) Unregister(ctx context.Context, client *Client) {
	select {
	case h.unregister <- client:
	case <-ctx.Done():
	}
}

// Publish serializes an event and queues it without blocking.
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- Message{RequesterID: event.RequesterID, Internal: event.Internal, Data: data}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBacklogFull
	}
}

// DisconnectUser closes every connection held by userID and returns how many
// were dropped. Clients reconnect through the auth middleware, which applies
// the account's current role and active flag.
func (h *Hub) DisconnectUser(userID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	dropped := 0
	for client := range h.clients {
		if client.UserID != userID {
			continue
		}
		client.Conn.Close()
		delete(h.clients, client)
		dropped++
	}
	if dropped > 0 {
		h.logger.Info("stream clients disconnected", zap.String("user_id", userID), zap.Int("count", dropped))
	}
	return dropped
}

// ClientCount reports the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// receives applies the same visibility rule as ticket listing: readers see
// everything except plain users, who only see their own tickets.
func (c *Client) receives(msg Message) bool {
	if !policy.Can(c.Role, policy.ResourceTickets, policy.ActionRead) {
		return false
	}
	if msg.Internal && !policy.Can(c.Role, policy.ResourceTickets, policy.ActionUpdate) {
		return false
	}
	if c.Role == policy.RoleUser {
		return msg.RequesterID != "" && msg.RequesterID == c.UserID
	}
	return true
}
