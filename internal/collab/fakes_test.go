package collab

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/grantmate/internal/domain/collaborator"
	"github.com/rpggio/grantmate/internal/domain/history"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	frames   [][]byte
	full     bool
	closed   bool
	received chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{received: make(chan struct{}, 128)}
}

func (c *fakeConn) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.full {
		return false
	}
	c.frames = append(c.frames, data)
	c.received <- struct{}{}
	return true
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) messages(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func (c *fakeConn) waitFrames(t *testing.T, n int) []map[string]any {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		c.mu.Lock()
		have := len(c.frames)
		c.mu.Unlock()
		if have >= n {
			return c.messages(t)
		}
		select {
		case <-c.received:
		case <-deadline:
			t.Fatalf("timed out waiting for %d frames, have %d", n, have)
		}
	}
}

// memoryRoster mimics collaborator.Service over a map.
type memoryRoster struct {
	mu        sync.Mutex
	proposals map[int64]bool
	rows      []collaborator.Collaborator
	nextID    int64
}

func newMemoryRoster(proposalIDs ...int64) *memoryRoster {
	r := &memoryRoster{proposals: map[int64]bool{}}
	for _, id := range proposalIDs {
		r.proposals[id] = true
	}
	return r
}

func (r *memoryRoster) Join(_ context.Context, req collaborator.JoinRequest) (*collaborator.Collaborator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.proposals[req.ProposalID] {
		return nil, collaborator.ErrProposalNotFound
	}
	for _, c := range r.rows {
		if c.ProposalID == req.ProposalID && c.Identity == req.Identity {
			existing := c
			return &existing, nil
		}
	}
	r.nextID++
	c := collaborator.Collaborator{ID: r.nextID, ProposalID: req.ProposalID, Identity: req.Identity, Role: req.Role, JoinedAt: time.Now()}
	r.rows = append(r.rows, c)
	return &c, nil
}

func (r *memoryRoster) List(_ context.Context, proposalID int64) ([]collaborator.Collaborator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []collaborator.Collaborator{}
	for _, c := range r.rows {
		if c.ProposalID == proposalID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memoryLog struct {
	mu      sync.Mutex
	updates []history.Update
}

func (l *memoryLog) Append(_ context.Context, req history.AppendRequest) (*history.Update, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if req.Field == "" {
		return nil, history.ErrInvalidInput
	}
	u := history.Update{
		ID:         int64(len(l.updates) + 1),
		ProposalID: req.ProposalID,
		Identity:   req.Identity,
		Field:      req.Field,
		OldValue:   req.OldValue,
		NewValue:   req.NewValue,
		Timestamp:  time.Now(),
	}
	l.updates = append(l.updates, u)
	return &u, nil
}

func (l *memoryLog) all() []history.Update {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]history.Update(nil), l.updates...)
}
