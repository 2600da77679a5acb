package collab

import (
	"context"
	"strconv"
	"testing"

	"github.com/rpggio/grantmate/internal/domain/identity"
	"github.com/stretchr/testify/require"
)

func newTestProtocol(proposalIDs ...int64) (*Protocol, *memoryRoster, *memoryLog) {
	roster := newMemoryRoster(proposalIDs...)
	log := &memoryLog{}
	return NewProtocol(NewRegistry(), roster, log, nil), roster, log
}

func join(t *testing.T, p *Protocol, proposalID int64, guest string) (*Session, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	s := p.Connect(conn)
	frame := `{"type":"join_proposal","proposalId":` + strconv.FormatInt(proposalID, 10)
	if guest != "" {
		frame += `,"guestName":"` + guest + `"`
	}
	frame += `}`
	p.Handle(context.Background(), s, []byte(frame))
	return s, conn
}

func TestProtocol_AliceBob(t *testing.T) {
	p, _, log := newTestProtocol(42)
	ctx := context.Background()

	alice, aliceConn := join(t, p, 42, "Alice")
	bob, bobConn := join(t, p, 42, "Bob")
	require.Equal(t, StateJoined, alice.State())
	require.Equal(t, StateJoined, bob.State())

	p.Handle(ctx, alice, []byte(`{"type":"field_update","field":"mission","oldValue":"","newValue":"Help kids"}`))

	bobMsgs := bobConn.messages(t)
	require.Len(t, bobMsgs, 2)
	require.Equal(t, map[string]any{
		"type":      "field_changed",
		"field":     "mission",
		"value":     "Help kids",
		"updatedBy": "Alice",
	}, bobMsgs[1])

	// Alice only has her own roster reply
	aliceMsgs := aliceConn.messages(t)
	require.Len(t, aliceMsgs, 1)
	require.Equal(t, "collaborators_update", aliceMsgs[0]["type"])

	updates := log.all()
	require.Len(t, updates, 1)
	require.Equal(t, int64(42), updates[0].ProposalID)
	require.Equal(t, identity.Guest("Alice"), updates[0].Identity)
	require.Equal(t, "Help kids", updates[0].NewValue)
}

func TestProtocol_CrossProposalIsolation(t *testing.T) {
	p, _, _ := newTestProtocol(42, 7)

	alice, _ := join(t, p, 42, "Alice")
	_, carolConn := join(t, p, 7, "Carol")

	p.Handle(context.Background(), alice, []byte(`{"type":"field_update","field":"goals","oldValue":"a","newValue":"b"}`))

	msgs := carolConn.messages(t)
	require.Len(t, msgs, 1)
	require.Equal(t, "collaborators_update", msgs[0]["type"])
}

func TestProtocol_LateJoinerSeesRosterInJoinOrder(t *testing.T) {
	p, _, _ := newTestProtocol(42)

	join(t, p, 42, "Alice")
	join(t, p, 42, "Bob")
	_, cConn := join(t, p, 42, "C")

	msgs := cConn.messages(t)
	require.Len(t, msgs, 1)
	roster := msgs[0]["collaborators"].([]any)
	require.Len(t, roster, 3)
	var names []string
	for _, entry := range roster {
		names = append(names, entry.(map[string]any)["guestName"].(string))
	}
	require.Equal(t, []string{"Alice", "Bob", "C"}, names)
}

func TestProtocol_RejoinIsIdempotent(t *testing.T) {
	p, roster, _ := newTestProtocol(42)

	first, _ := join(t, p, 42, "Alice")
	p.Disconnect(first)
	_, conn := join(t, p, 42, "Alice")

	msgs := conn.messages(t)
	require.Len(t, msgs[0]["collaborators"].([]any), 1)
	require.Len(t, roster.rows, 1)
}

func TestProtocol_SecondJoinIgnored(t *testing.T) {
	p, _, _ := newTestProtocol(42, 7)

	s, conn := join(t, p, 42, "Alice")
	p.Handle(context.Background(), s, []byte(`{"type":"join_proposal","proposalId":7,"guestName":"Alice"}`))

	require.Equal(t, int64(42), s.ProposalID())
	require.Len(t, conn.messages(t), 1)
}

func TestProtocol_FieldUpdateBeforeJoinIgnored(t *testing.T) {
	p, _, log := newTestProtocol(42)
	_, peerConn := join(t, p, 42, "Bob")

	s := p.Connect(newFakeConn())
	p.Handle(context.Background(), s, []byte(`{"type":"field_update","field":"mission","oldValue":"","newValue":"x"}`))

	require.Equal(t, StateConnected, s.State())
	require.Empty(t, log.all())
	require.Len(t, peerConn.messages(t), 1)
}

func TestProtocol_MalformedFramesIgnored(t *testing.T) {
	p, _, log := newTestProtocol(42)
	s, conn := join(t, p, 42, "Alice")
	ctx := context.Background()

	p.Handle(ctx, s, []byte(`not json`))
	p.Handle(ctx, s, []byte(`{"type":"dance"}`))
	p.Handle(ctx, s, []byte(`{"type":"field_update","field":42}`))
	p.Handle(ctx, s, []byte(`{"type":"field_update","field":"","newValue":"x"}`))

	require.Equal(t, StateJoined, s.State())
	require.Empty(t, log.all())
	require.Len(t, conn.messages(t), 1)

	c := p.Connect(newFakeConn())
	p.Handle(ctx, c, []byte(`{"type":"join_proposal","proposalId":"abc"}`))
	p.Handle(ctx, c, []byte(`{"type":"join_proposal"}`))
	require.Equal(t, StateConnected, c.State())
}

func TestProtocol_JoinUnknownProposal(t *testing.T) {
	p, roster, _ := newTestProtocol()

	s, conn := join(t, p, 99, "Alice")

	require.Equal(t, StateJoined, s.State())
	require.Equal(t, int64(99), s.ProposalID())
	msgs := conn.messages(t)
	require.Len(t, msgs, 1)
	require.Equal(t, []any{}, msgs[0]["collaborators"])
	require.Empty(t, roster.rows)
}

func TestProtocol_AnonymousJoin(t *testing.T) {
	p, roster, _ := newTestProtocol(42)

	anon, conn := join(t, p, 42, "")
	_, bobConn := join(t, p, 42, "Bob")

	require.Equal(t, StateJoined, anon.State())
	require.Len(t, conn.messages(t)[0]["collaborators"].([]any), 0)
	require.Len(t, roster.rows, 1)

	p.Handle(context.Background(), anon, []byte(`{"type":"field_update","field":"timeline","oldValue":"","newValue":"6 months"}`))
	require.Equal(t, "Anonymous", bobConn.messages(t)[1]["updatedBy"])
}

func TestProtocol_RegisteredIdentityWins(t *testing.T) {
	p, _, _ := newTestProtocol(42)
	ctx := context.Background()

	s := p.Connect(newFakeConn())
	p.Handle(ctx, s, []byte(`{"type":"join_proposal","proposalId":42,"userId":7,"guestName":"Alice"}`))
	_, bobConn := join(t, p, 42, "Bob")

	p.Handle(ctx, s, []byte(`{"type":"field_update","field":"amount","oldValue":"1","newValue":"2"}`))
	require.Equal(t, "User 7", bobConn.messages(t)[1]["updatedBy"])
}

func TestProtocol_DisconnectKeepsRoster(t *testing.T) {
	p, roster, _ := newTestProtocol(42)

	alice, aliceConn := join(t, p, 42, "Alice")
	bob, bobConn := join(t, p, 42, "Bob")

	p.Disconnect(bob)
	require.Equal(t, StateClosed, bob.State())
	require.True(t, bobConn.isClosed())
	require.Equal(t, 1, p.Registry().Len())
	require.Len(t, roster.rows, 2)

	p.Handle(context.Background(), alice, []byte(`{"type":"field_update","field":"goals","oldValue":"","newValue":"x"}`))
	require.Len(t, bobConn.messages(t), 1)

	// Closed sessions accept nothing further
	p.Handle(context.Background(), bob, []byte(`{"type":"field_update","field":"goals","oldValue":"","newValue":"y"}`))
	require.Len(t, aliceConn.messages(t), 1)
}

func TestProtocol_AnnounceCollaborator(t *testing.T) {
	p, roster, _ := newTestProtocol(42, 7)

	_, aliceConn := join(t, p, 42, "Alice")
	_, carolConn := join(t, p, 7, "Carol")

	added, err := roster.Join(context.Background(), joinRequest(42, identity.Guest("Dana")))
	require.NoError(t, err)

	require.Equal(t, 1, p.AnnounceCollaborator(*added))
	msgs := aliceConn.messages(t)
	require.Len(t, msgs, 2)
	require.Equal(t, "collaborator_joined", msgs[1]["type"])
	require.Equal(t, "Dana", msgs[1]["collaborator"].(map[string]any)["guestName"])
	require.Len(t, carolConn.messages(t), 1)
}

func TestProtocol_Shutdown(t *testing.T) {
	p, _, _ := newTestProtocol(42)
	_, a := join(t, p, 42, "Alice")
	_, b := join(t, p, 42, "Bob")

	p.Shutdown()

	require.Zero(t, p.Registry().Len())
	require.True(t, a.isClosed())
	require.True(t, b.isClosed())
}
