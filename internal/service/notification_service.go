package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/deskline/service-desk/internal/config"
	"github.com/deskline/service-desk/internal/events"
)

// EventStream receives events for live delivery.
type EventStream interface {
	Publish(ctx context.Context, event events.Event) error
}

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	stream     EventStream
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. stream may be nil.
func NewNotificationService(dispatcher events.Dispatcher, stream EventStream, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		stream:     stream,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to every ticket event.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.SubscribeAll(n.handle)
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket event",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor_id", event.Actor.UserID))

	switch event.Type {
	case events.EventTicketCreated:
		n.sendEmailNotificationStub(event)
		n.sendWebhookNotificationStub(event)
	case events.EventTicketStatusChanged, events.EventTicketAssigned:
		n.sendWebhookNotificationStub(event)
	}

	if n.stream == nil {
		return nil
	}
	return n.stream.Publish(ctx, event)
}

func (n *NotificationService) sendEmailNotificationStub(event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
