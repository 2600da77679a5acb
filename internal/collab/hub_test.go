package collab

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/rpggio/grantmate/internal/domain/collaborator"
	"github.com/rpggio/grantmate/internal/domain/history"
	"github.com/rpggio/grantmate/internal/domain/identity"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, proposalIDs ...int64) (*Hub, *memoryLog, context.CancelFunc) {
	t.Helper()
	p, _, log := newTestProtocol(proposalIDs...)
	hub := NewHub(p, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub, log, cancel
}

func hubJoin(t *testing.T, hub *Hub, proposalID int64, guest string) (*Session, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	s, err := hub.Connect(context.Background(), conn)
	require.NoError(t, err)
	require.NoError(t, hub.Deliver(s, []byte(`{"type":"join_proposal","proposalId":`+strconv.FormatInt(proposalID, 10)+`,"guestName":"`+guest+`"}`)))
	conn.waitFrames(t, 1)
	return s, conn
}

func TestHub_BroadcastsInAcceptanceOrder(t *testing.T) {
	hub, log, _ := startHub(t, 42)

	alice, _ := hubJoin(t, hub, 42, "Alice")
	_, bobConn := hubJoin(t, hub, 42, "Bob")

	values := []string{"one", "two", "three", "four", "five"}
	for _, v := range values {
		require.NoError(t, hub.Deliver(alice, []byte(`{"type":"field_update","field":"mission","oldValue":"","newValue":"`+v+`"}`)))
	}

	msgs := bobConn.waitFrames(t, 1+len(values))
	for i, v := range values {
		require.Equal(t, v, msgs[i+1]["value"])
	}

	updates := log.all()
	require.Len(t, updates, len(values))
	for i, v := range values {
		require.Equal(t, v, updates[i].NewValue)
	}
}

func TestHub_AnnounceCollaborator(t *testing.T) {
	hub, _, _ := startHub(t, 42)
	_, aliceConn := hubJoin(t, hub, 42, "Alice")

	err := hub.AnnounceCollaborator(context.Background(), collaborator.Collaborator{
		ID: 9, ProposalID: 42, Identity: identity.Registered(3), Role: collaborator.RoleViewer, JoinedAt: time.Now(),
	})
	require.NoError(t, err)

	msgs := aliceConn.waitFrames(t, 2)
	require.Equal(t, "collaborator_joined", msgs[1]["type"])
}

func TestHub_DisconnectAndShutdown(t *testing.T) {
	hub, _, cancel := startHub(t, 42)

	alice, aliceConn := hubJoin(t, hub, 42, "Alice")
	_, bobConn := hubJoin(t, hub, 42, "Bob")

	hub.Disconnect(alice)
	require.Eventually(t, aliceConn.isClosed, time.Second, 5*time.Millisecond)

	cancel()
	<-hub.Done()
	require.True(t, bobConn.isClosed())

	_, err := hub.Connect(context.Background(), newFakeConn())
	require.ErrorIs(t, err, ErrHubStopped)
	require.ErrorIs(t, hub.Deliver(alice, []byte(`{}`)), ErrHubStopped)
	hub.Disconnect(alice)
}

type slowLog struct {
	memoryLog
	delay time.Duration
}

func (l *slowLog) Append(ctx context.Context, req history.AppendRequest) (*history.Update, error) {
	time.Sleep(l.delay)
	return l.memoryLog.Append(ctx, req)
}

func TestHub_DisconnectWaitsForQueuedUpdates(t *testing.T) {
	for trial := range 5 {
		log := &slowLog{delay: 10 * time.Millisecond}
		hub := NewHub(NewProtocol(NewRegistry(), newMemoryRoster(42), log, nil), nil)
		ctx, cancel := context.WithCancel(context.Background())
		go hub.Run(ctx)

		conn := newFakeConn()
		s, err := hub.Connect(ctx, conn)
		require.NoError(t, err)
		require.NoError(t, hub.Deliver(s, []byte(`{"type":"join_proposal","proposalId":42,"guestName":"Alice"}`)))
		for i := range 5 {
			require.NoError(t, hub.Deliver(s, []byte(`{"type":"field_update","field":"goals","oldValue":"","newValue":"v`+strconv.Itoa(i)+`"}`)))
		}
		hub.Disconnect(s)

		require.Eventually(t, conn.isClosed, 2*time.Second, 5*time.Millisecond, "trial %d", trial)
		updates := log.all()
		require.Len(t, updates, 5, "trial %d", trial)
		for i, u := range updates {
			require.Equal(t, "v"+strconv.Itoa(i), u.NewValue)
		}

		cancel()
		<-hub.Done()
	}
}
