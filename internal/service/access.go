package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/events"
	"github.com/deskline/service-desk/internal/policy"
	apperrors "github.com/deskline/service-desk/pkg/util/errorutil"
)

// requirePermission fails unless actor's role grants action on resource.
func requirePermission(actor *domain.User, resource policy.Resource, action policy.Action) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !actor.Can(resource, action) {
		return apperrors.NewPermissionDenied(string(resource), string(action))
	}
	return nil
}

// lookupError turns a missing row into NOT_FOUND for resource and maps the rest.
func lookupError(err error, resource, key, id string) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound(resource, map[string]any{key: id})
	}
	return apperrors.MapError(err)
}

func actorOf(user *domain.User) events.Actor {
	if user == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: user.ID, Role: user.Role}
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
