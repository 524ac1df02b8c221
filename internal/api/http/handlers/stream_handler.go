package handlers

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/deskline/service-desk/internal/auth"
	"github.com/deskline/service-desk/internal/stream"
)

// StreamHandler upgrades authenticated requests onto the ticket event hub.
type StreamHandler struct {
	hub *stream.Hub
	ctx context.Context
}

// NewStreamHandler binds connections to ctx, the server lifetime.
func NewStreamHandler(ctx context.Context, hub *stream.Hub) *StreamHandler {
	return &StreamHandler{hub: hub, ctx: ctx}
}

// RequireUpgrade rejects plain HTTP requests.
func (h *StreamHandler) RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Tickets GET /ws/tickets.
func (h *StreamHandler) Tickets() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		principal, ok := auth.PrincipalFromLocals(func(key string) any { return conn.Locals(key) })
		if !ok {
			_ = conn.Close()
			return
		}
		client := &stream.Client{Conn: conn, UserID: principal.User.ID, Role: principal.User.Role}
		if !h.hub.Register(h.ctx, client) {
			_ = conn.Close()
			return
		}
		defer h.hub.Unregister(h.ctx, client)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	})
}
