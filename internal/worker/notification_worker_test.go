package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/deskline/service-desk/internal/config"
	"github.com/deskline/service-desk/internal/events"
	"github.com/deskline/service-desk/internal/policy"
	"github.com/deskline/service-desk/internal/service"
	"github.com/deskline/service-desk/internal/stream"
)

type recordingConn struct {
	mu   sync.Mutex
	msgs int
}

func (r *recordingConn) WriteMessage(int, []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs++
	return nil
}

func (r *recordingConn) Close() error { return nil }

func (r *recordingConn) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.msgs
}

func TestWorkerForwardsEventsToStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := events.NewInMemoryDispatcher()
	hub := stream.NewHub(zap.NewNop(), 8)
	notifications := service.NewNotificationService(dispatcher, hub, zap.NewNop(), config.NotificationConfig{})
	StartNotificationWorker(ctx, notifications, hub)

	conn := &recordingConn{}
	require.True(t, hub.Register(ctx, &stream.Client{Conn: conn, UserID: "a", Role: policy.RoleAgent}))

	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventTicketCreated, TicketID: "t1"}))
	assert.Eventually(t, func() bool { return conn.count() == 1 }, time.Second, 5*time.Millisecond)
}
