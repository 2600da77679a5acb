package collab

import (
	"github.com/google/uuid"
	"github.com/rpggio/grantmate/internal/domain/identity"
)

// State is a session's position in its lifecycle.
type State int

const (
	StateConnected State = iota
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Conn is the transport behind a session.
type Conn interface {
	// Send queues a frame without blocking and reports whether it was accepted.
	Send(data []byte) bool
	Close() error
}

// Session is one live connection. Its fields are owned by the goroutine
// driving the Protocol.
type Session struct {
	id         string
	conn       Conn
	state      State
	proposalID int64
	identity   identity.Identity
}

func newSession(conn Conn) *Session {
	return &Session{
		id:    uuid.NewString(),
		conn:  conn,
		state: StateConnected,
	}
}

func (s *Session) ID() string                  { return s.id }
func (s *Session) State() State                { return s.state }
func (s *Session) ProposalID() int64           { return s.proposalID }
func (s *Session) Identity() identity.Identity { return s.identity }

// bind records the proposal and identity. It succeeds once, from StateConnected.
func (s *Session) bind(proposalID int64, ident identity.Identity) bool {
	if s.state != StateConnected {
		return false
	}
	s.proposalID = proposalID
	s.identity = ident
	s.state = StateJoined
	return true
}

func (s *Session) send(data []byte) bool {
	if s.state == StateClosed {
		return false
	}
	return s.conn.Send(data)
}

func (s *Session) close() {
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	_ = s.conn.Close()
}
