package collaborator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/grantmate/internal/domain/identity"
)

// Service maintains per-proposal rosters.
type Service struct {
	repo      Repository
	proposals ProposalLookup
	logger    *slog.Logger
}

// NewService creates a new roster service.
func NewService(repo Repository, proposals ProposalLookup, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, proposals: proposals, logger: logger}
}

// JoinRequest describes a roster join.
type JoinRequest struct {
	ProposalID int64
	Identity   identity.Identity
	Role       Role
}

// Join adds the identity to the proposal's roster. Joining twice returns the
// existing entry unchanged.
func (s *Service) Join(ctx context.Context, req JoinRequest) (*Collaborator, error) {
	if req.ProposalID <= 0 || req.Identity.IsAnonymous() {
		return nil, ErrInvalidInput
	}
	role := req.Role
	if role == "" {
		role = RoleEditor
	}
	if !role.Valid() {
		return nil, ErrInvalidInput
	}

	exists, err := s.proposals.Exists(ctx, req.ProposalID)
	if err != nil {
		return nil, fmt.Errorf("checking proposal: %w", err)
	}
	if !exists {
		return nil, ErrProposalNotFound
	}

	c := &Collaborator{
		ProposalID: req.ProposalID,
		Identity:   req.Identity,
		Role:       role,
		JoinedAt:   time.Now(),
	}
	if err := s.repo.Upsert(ctx, c); err != nil {
		return nil, fmt.Errorf("joining roster: %w", err)
	}
	s.logger.Debug("roster join", "proposal_id", req.ProposalID, "collaborator", req.Identity.DisplayName(), "collaborator_id", c.ID)
	return c, nil
}

// List returns the roster in join order. Unknown proposals yield an empty roster.
func (s *Service) List(ctx context.Context, proposalID int64) ([]Collaborator, error) {
	list, err := s.repo.List(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("listing roster: %w", err)
	}
	if list == nil {
		list = []Collaborator{}
	}
	return list, nil
}

// Leave removes the identity from the roster and reports whether an entry existed.
func (s *Service) Leave(ctx context.Context, proposalID int64, ident identity.Identity) (bool, error) {
	if ident.IsAnonymous() {
		return false, nil
	}
	removed, err := s.repo.Delete(ctx, proposalID, ident)
	if err != nil {
		return false, fmt.Errorf("leaving roster: %w", err)
	}
	return removed, nil
}
