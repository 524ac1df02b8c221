package stream

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/deskline/service-desk/internal/events"
	"github.com/deskline/service-desk/internal/policy"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	failWith error
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zap.NewNop(), 4)
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestHubDeliversByVisibility(t *testing.T) {
	hub, _ := startHub(t)
	ctx := context.Background()

	agent := &fakeConn{}
	owner := &fakeConn{}
	other := &fakeConn{}
	require.True(t, hub.Register(ctx, &Client{Conn: agent, UserID: "a1", Role: policy.RoleAgent}))
	require.True(t, hub.Register(ctx, &Client{Conn: owner, UserID: "u1", Role: policy.RoleUser}))
	require.True(t, hub.Register(ctx, &Client{Conn: other, UserID: "u2", Role: policy.RoleUser}))

	event := events.Event{ID: "e1", Type: events.EventTicketCreated, TicketID: "t1", RequesterID: "u1"}
	require.NoError(t, hub.Publish(ctx, event))

	assert.Eventually(t, func() bool { return agent.count() == 1 && owner.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, other.count())

	var decoded events.Event
	require.NoError(t, json.Unmarshal(agent.messages[0], &decoded))
	assert.Equal(t, "t1", decoded.TicketID)
}

func TestHubDropsFailingClients(t *testing.T) {
	hub, _ := startHub(t)
	ctx := context.Background()

	broken := &fakeConn{failWith: errors.New("gone")}
	require.True(t, hub.Register(ctx, &Client{Conn: broken, UserID: "m1", Role: policy.RoleManager}))
	require.NoError(t, hub.Publish(ctx, events.Event{Type: events.EventTicketUpdated}))

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, broken.isClosed())
}

func TestHubClosesClientsOnShutdown(t *testing.T) {
	hub, cancel := startHub(t)
	conn := &fakeConn{}
	require.True(t, hub.Register(context.Background(), &Client{Conn: conn, UserID: "v1", Role: policy.RoleViewer}))

	hub.Unregister(context.Background(), &Client{Conn: &fakeConn{}})
	cancel()
	assert.Eventually(t, conn.isClosed, time.Second, 5*time.Millisecond)
}

func TestRegisterRespectsContext(t *testing.T) {
	hub := NewHub(nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, hub.Register(ctx, &Client{Conn: &fakeConn{}}))
	assert.ErrorIs(t, hub.Publish(ctx, events.Event{}), context.Canceled)
}

func TestPublishDoesNotBlockWhenBacklogFull(t *testing.T) {
	hub := NewHub(nil, 1)
	ctx := context.Background()
	require.NoError(t, hub.Publish(ctx, events.Event{ID: "1"}))
	assert.ErrorIs(t, hub.Publish(ctx, events.Event{ID: "2"}), ErrBacklogFull)
}

func TestDisconnectUserClosesOnlyThatAccount(t *testing.T) {
	hub, _ := startHub(t)
	ctx := context.Background()

	first := &fakeConn{}
	second := &fakeConn{}
	bystander := &fakeConn{}
	require.True(t, hub.Register(ctx, &Client{Conn: first, UserID: "a1", Role: policy.RoleAgent}))
	require.True(t, hub.Register(ctx, &Client{Conn: second, UserID: "a1", Role: policy.RoleAgent}))
	require.True(t, hub.Register(ctx, &Client{Conn: bystander, UserID: "a2", Role: policy.RoleAgent}))
	require.Eventually(t, func() bool { return hub.ClientCount() == 3 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 2, hub.DisconnectUser("a1"))
	assert.True(t, first.isClosed())
	assert.True(t, second.isClosed())
	assert.False(t, bystander.isClosed())
	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, 0, hub.DisconnectUser("a1"))

	require.NoError(t, hub.Publish(ctx, events.Event{ID: "e1", Type: events.EventTicketUpdated}))
	assert.Eventually(t, func() bool { return bystander.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, first.count())
}

func TestInternalEventsSkipRequesters(t *testing.T) {
	hub, _ := startHub(t)
	ctx := context.Background()

	agent := &fakeConn{}
	owner := &fakeConn{}
	viewer := &fakeConn{}
	require.True(t, hub.Register(ctx, &Client{Conn: agent, UserID: "a1", Role: policy.RoleAgent}))
	require.True(t, hub.Register(ctx, &Client{Conn: owner, UserID: "u1", Role: policy.RoleUser}))
	require.True(t, hub.Register(ctx, &Client{Conn: viewer, UserID: "v1", Role: policy.RoleViewer}))

	note := events.Event{ID: "n1", Type: events.EventTicketCommented, TicketID: "t1", RequesterID: "u1", Internal: true}
	require.NoError(t, hub.Publish(ctx, note))
	public := events.Event{ID: "n2", Type: events.EventTicketCommented, TicketID: "t1", RequesterID: "u1"}
	require.NoError(t, hub.Publish(ctx, public))

	assert.Eventually(t, func() bool { return agent.count() == 2 && owner.count() == 1 && viewer.count() == 1 }, time.Second, 5*time.Millisecond)
	var decoded events.Event
	owner.mu.Lock()
	require.NoError(t, json.Unmarshal(owner.messages[0], &decoded))
	owner.mu.Unlock()
	assert.Equal(t, "n2", decoded.ID)
}
