package proposal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/grantmate/internal/repository"
)

// Service handles proposal operations.
type Service struct {
	repo      Repository
	generator Generator
	logger    *slog.Logger
}

// NewService creates a new proposal service. generator may be nil when
// generation is not wired.
func NewService(repo Repository, generator Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, generator: generator, logger: logger}
}

// CreateRequest defines proposal creation inputs.
type CreateRequest struct {
	Fields
	UserID   *int64
	IsPublic bool
}

// Create validates and stores a new draft proposal with a fresh share token.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Proposal, error) {
	if err := ValidateFields(req.Fields); err != nil {
		return nil, err
	}

	now := time.Now()
	p := &Proposal{
		UserID:     req.UserID,
		Fields:     req.Fields,
		Status:     StatusDraft,
		ShareToken: newShareToken(),
		IsPublic:   req.IsPublic,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating proposal: %w", err)
	}
	return p, nil
}

// Get fetches a proposal by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Proposal, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("getting proposal: %w", err)
	}
	return p, nil
}

// GetByShareToken fetches a proposal through its share link.
func (s *Service) GetByShareToken(ctx context.Context, token string) (*Proposal, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrProposalNotFound
	}
	p, err := s.repo.GetByShareToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("getting shared proposal: %w", err)
	}
	return p, nil
}

// ListByUser returns the proposals owned by a registered user.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Proposal, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Update applies a validated partial update.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (*Proposal, error) {
	if err := ValidatePatch(patch); err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Apply(patch)
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("updating proposal: %w", err)
	}
	return p, nil
}

// Delete removes a proposal.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProposalNotFound
		}
		return fmt.Errorf("deleting proposal: %w", err)
	}
	return nil
}

// Draft generates proposal text for unsaved form content.
func (s *Service) Draft(ctx context.Context, fields Fields) (string, error) {
	if err := ValidateFields(fields); err != nil {
		return "", err
	}
	if s.generator == nil {
		return "", fmt.Errorf("generation not configured")
	}
	return s.generator.Generate(ctx, fields)
}

// Generate produces text for a stored proposal and marks it generated.
func (s *Service) Generate(ctx context.Context, id int64) (*Proposal, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("generation not configured")
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	text, err := s.generator.Generate(ctx, p.Fields)
	if err != nil {
		return nil, fmt.Errorf("generating proposal %d: %w", id, err)
	}

	status := StatusGenerated
	s.logger.Info("proposal generated", "proposal_id", id, "length", len(text))
	return s.Update(ctx, id, Patch{GeneratedProposal: &text, Status: &status})
}

func newShareToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
