package mocks

import (
	"context"

	"github.com/rpggio/grantmate/internal/domain/collaborator"
	"github.com/rpggio/grantmate/internal/domain/history"
	"github.com/rpggio/grantmate/internal/domain/identity"
	"github.com/rpggio/grantmate/internal/domain/proposal"
	"github.com/stretchr/testify/mock"
)

// ProposalRepository is a mock for proposal.Repository.
type ProposalRepository struct {
	mock.Mock
}

func (m *ProposalRepository) Create(ctx context.Context, p *proposal.Proposal) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProposalRepository) Get(ctx context.Context, id int64) (*proposal.Proposal, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*proposal.Proposal); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProposalRepository) GetByShareToken(ctx context.Context, token string) (*proposal.Proposal, error) {
	args := m.Called(ctx, token)
	if p, ok := args.Get(0).(*proposal.Proposal); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProposalRepository) ListByUser(ctx context.Context, userID int64) ([]proposal.Proposal, error) {
	args := m.Called(ctx, userID)
	if list, ok := args.Get(0).([]proposal.Proposal); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProposalRepository) Update(ctx context.Context, p *proposal.Proposal) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProposalRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProposalRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// CollaboratorRepository is a mock for collaborator.Repository.
type CollaboratorRepository struct {
	mock.Mock
}

func (m *CollaboratorRepository) Upsert(ctx context.Context, c *collaborator.Collaborator) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CollaboratorRepository) List(ctx context.Context, proposalID int64) ([]collaborator.Collaborator, error) {
	args := m.Called(ctx, proposalID)
	if list, ok := args.Get(0).([]collaborator.Collaborator); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CollaboratorRepository) Delete(ctx context.Context, proposalID int64, ident identity.Identity) (bool, error) {
	args := m.Called(ctx, proposalID, ident)
	return args.Bool(0), args.Error(1)
}

// UpdateRepository is a mock for history.Repository.
type UpdateRepository struct {
	mock.Mock
}

func (m *UpdateRepository) Append(ctx context.Context, u *history.Update) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UpdateRepository) Recent(ctx context.Context, proposalID int64, limit int) ([]history.Update, error) {
	args := m.Called(ctx, proposalID, limit)
	if list, ok := args.Get(0).([]history.Update); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
