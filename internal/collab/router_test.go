package collab

import (
	"testing"

	"github.com/rpggio/grantmate/internal/domain/collaborator"
	"github.com/rpggio/grantmate/internal/domain/identity"
	"github.com/stretchr/testify/require"
)

func joinRequest(proposalID int64, ident identity.Identity) collaborator.JoinRequest {
	return collaborator.JoinRequest{ProposalID: proposalID, Identity: ident, Role: collaborator.RoleEditor}
}

func joinedSession(r *Registry, proposalID int64, name string) (*Session, *fakeConn) {
	conn := newFakeConn()
	s := newSession(conn)
	s.bind(proposalID, identity.Guest(name))
	r.Add(s)
	return s, conn
}

func TestRouter_BroadcastExcludesSender(t *testing.T) {
	reg := NewRegistry()
	router := NewRouter(reg, nil)

	a, aConn := joinedSession(reg, 1, "A")
	_, bConn := joinedSession(reg, 1, "B")
	_, cConn := joinedSession(reg, 1, "C")

	n, err := router.Broadcast(1, FieldChanged{Type: TypeFieldChanged, Field: "f", Value: "v", UpdatedBy: "A"}, a)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Empty(t, aConn.messages(t))
	require.Len(t, bConn.messages(t), 1)
	require.Len(t, cConn.messages(t), 1)
}

func TestRouter_SkipsUnwritableAndUnjoined(t *testing.T) {
	reg := NewRegistry()
	router := NewRouter(reg, nil)

	_, full := joinedSession(reg, 1, "Full")
	full.full = true
	closed, _ := joinedSession(reg, 1, "Closed")
	closed.close()
	_, ok := joinedSession(reg, 1, "Ok")

	pendingConn := newFakeConn()
	reg.Add(newSession(pendingConn))

	n, err := router.Broadcast(1, map[string]string{"type": "x"}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, ok.messages(t), 1)
	require.Empty(t, pendingConn.messages(t))
}

func TestRouter_EncodeError(t *testing.T) {
	router := NewRouter(NewRegistry(), nil)
	_, err := router.Broadcast(1, make(chan int), nil)
	require.Error(t, err)
}

func TestRegistry_Order(t *testing.T) {
	reg := NewRegistry()
	a, _ := joinedSession(reg, 1, "A")
	b, _ := joinedSession(reg, 1, "B")
	c, _ := joinedSession(reg, 2, "C")

	require.Equal(t, []*Session{a, b}, reg.Joined(1))
	require.True(t, reg.Remove(a))
	require.False(t, reg.Remove(a))
	require.Equal(t, []*Session{b, c}, reg.All())

	got, ok := reg.Get(c.ID())
	require.True(t, ok)
	require.Same(t, c, got)
	require.Equal(t, 2, reg.Len())
}
