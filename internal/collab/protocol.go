// Package collab implements the real-time editing session layer: a registry
// of live connections, the per-connection protocol state machine, fan-out to
// peers on the same proposal, and the WebSocket transport that carries it.
package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/rpggio/grantmate/internal/domain/collaborator"
	"github.com/rpggio/grantmate/internal/domain/history"
	"github.com/rpggio/grantmate/internal/domain/identity"
)

// Roster is the subset of the collaborator service the protocol uses.
type Roster interface {
	Join(ctx context.Context, req collaborator.JoinRequest) (*collaborator.Collaborator, error)
	List(ctx context.Context, proposalID int64) ([]collaborator.Collaborator, error)
}

// UpdateLog is the subset of the history service the protocol uses.
type UpdateLog interface {
	Append(ctx context.Context, req history.AppendRequest) (*history.Update, error)
}

type handlerFunc func(ctx context.Context, s *Session, data []byte)

// Protocol drives session state transitions. Its methods must be called from
// a single goroutine.
type Protocol struct {
	registry *Registry
	router   *Router
	roster   Roster
	updates  UpdateLog
	logger   *slog.Logger
	handlers map[string]handlerFunc
}

// NewProtocol creates a protocol bound to registry.
func NewProtocol(registry *Registry, roster Roster, updates UpdateLog, logger *slog.Logger) *Protocol {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Protocol{
		registry: registry,
		router:   NewRouter(registry, logger),
		roster:   roster,
		updates:  updates,
		logger:   logger,
	}
	p.handlers = map[string]handlerFunc{
		TypeJoinProposal: p.handleJoin,
		TypeFieldUpdate:  p.handleFieldUpdate,
	}
	return p
}

// Registry returns the registry the protocol manages.
func (p *Protocol) Registry() *Registry {
	return p.registry
}

// Connect registers a new connection in StateConnected.
func (p *Protocol) Connect(conn Conn) *Session {
	s := newSession(conn)
	p.registry.Add(s)
	p.logger.Debug("session connected", "session_id", s.id, "sessions", p.registry.Len())
	return s
}

// Handle dispatches one inbound frame. Malformed frames, unknown types and
// events not allowed in the current state are logged and dropped.
func (p *Protocol) Handle(ctx context.Context, s *Session, data []byte) {
	if s.state == StateClosed {
		return
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		p.logger.Warn("malformed frame", "session_id", s.id, "error", err)
		return
	}

	handler, ok := p.handlers[env.Type]
	if !ok {
		p.logger.Warn("unknown message type", "session_id", s.id, "type", env.Type)
		return
	}
	handler(ctx, s, data)
}

// Disconnect closes the session and drops it from the registry. Roster
// entries are kept.
func (p *Protocol) Disconnect(s *Session) {
	s.close()
	if p.registry.Remove(s) {
		p.logger.Debug("session closed", "session_id", s.id, "proposal_id", s.proposalID, "sessions", p.registry.Len())
	}
}

// AnnounceCollaborator tells every session joined to the collaborator's
// proposal about a roster addition.
func (p *Protocol) AnnounceCollaborator(c collaborator.Collaborator) int {
	n, err := p.router.Broadcast(c.ProposalID, CollaboratorJoined{
		Type:         TypeCollaboratorJoined,
		Collaborator: c,
	}, nil)
	if err != nil {
		p.logger.Error("announce collaborator", "proposal_id", c.ProposalID, "error", err)
	}
	return n
}

// Shutdown closes every session.
func (p *Protocol) Shutdown() {
	for _, s := range p.registry.All() {
		p.Disconnect(s)
	}
}

func (p *Protocol) handleJoin(ctx context.Context, s *Session, data []byte) {
	var msg JoinProposal
	if err := json.Unmarshal(data, &msg); err != nil {
		p.logger.Warn("malformed join_proposal", "session_id", s.id, "error", err)
		return
	}
	if msg.ProposalID <= 0 {
		p.logger.Warn("join_proposal without proposal id", "session_id", s.id)
		return
	}
	if s.state != StateConnected {
		p.logger.Warn("ignoring repeated join", "session_id", s.id, "proposal_id", s.proposalID, "requested", msg.ProposalID)
		return
	}

	ident := identity.Resolve(msg.UserID, msg.GuestName)
	s.bind(msg.ProposalID, ident)

	if !ident.IsAnonymous() {
		_, err := p.roster.Join(ctx, collaborator.JoinRequest{
			ProposalID: msg.ProposalID,
			Identity:   ident,
			Role:       collaborator.RoleEditor,
		})
		switch {
		case errors.Is(err, collaborator.ErrProposalNotFound):
			p.logger.Warn("join on unknown proposal", "session_id", s.id, "proposal_id", msg.ProposalID)
		case err != nil:
			p.logger.Error("roster join failed", "session_id", s.id, "proposal_id", msg.ProposalID, "error", err)
		}
	}

	roster, err := p.roster.List(ctx, msg.ProposalID)
	if err != nil {
		p.logger.Error("roster list failed", "proposal_id", msg.ProposalID, "error", err)
		roster = []collaborator.Collaborator{}
	}

	reply, err := json.Marshal(CollaboratorsUpdate{Type: TypeCollaboratorsUpdate, Collaborators: roster})
	if err != nil {
		p.logger.Error("encode roster", "error", err)
		return
	}
	if !s.send(reply) {
		p.logger.Debug("roster reply dropped", "session_id", s.id)
	}

	p.logger.Info("session joined", "session_id", s.id, "proposal_id", msg.ProposalID, "collaborator", ident.DisplayName())
}

func (p *Protocol) handleFieldUpdate(ctx context.Context, s *Session, data []byte) {
	if s.state != StateJoined {
		p.logger.Warn("field_update before join", "session_id", s.id)
		return
	}

	var msg FieldUpdate
	if err := json.Unmarshal(data, &msg); err != nil {
		p.logger.Warn("malformed field_update", "session_id", s.id, "error", err)
		return
	}

	_, err := p.updates.Append(ctx, history.AppendRequest{
		ProposalID: s.proposalID,
		Identity:   s.identity,
		Field:      msg.Field,
		OldValue:   msg.OldValue,
		NewValue:   msg.NewValue,
	})
	if err != nil {
		p.logger.Error("append update failed", "session_id", s.id, "proposal_id", s.proposalID, "field", msg.Field, "error", err)
		return
	}

	n, err := p.router.Broadcast(s.proposalID, FieldChanged{
		Type:      TypeFieldChanged,
		Field:     msg.Field,
		Value:     msg.NewValue,
		UpdatedBy: s.identity.DisplayName(),
	}, s)
	if err != nil {
		p.logger.Error("broadcast field change", "proposal_id", s.proposalID, "error", err)
		return
	}
	p.logger.Debug("field changed", "proposal_id", s.proposalID, "field", msg.Field, "recipients", n)
}
