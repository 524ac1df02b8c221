package worker

import (
	"context"

	"github.com/deskline/service-desk/internal/service"
	"github.com/deskline/service-desk/internal/stream"
)

// StartNotificationWorker runs the stream hub until ctx ends and registers notification handlers.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, hub *stream.Hub) {
	if hub != nil {
		go hub.Run(ctx)
	}
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
