package history

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/grantmate/internal/domain/identity"
)

// Service handles update log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new update log service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// AppendRequest describes one field change.
type AppendRequest struct {
	ProposalID int64
	Identity   identity.Identity
	Field      string
	OldValue   string
	NewValue   string
}

// Append records a field change. The field name is not checked against the
// proposal's form fields.
func (s *Service) Append(ctx context.Context, req AppendRequest) (*Update, error) {
	if req.ProposalID <= 0 || strings.TrimSpace(req.Field) == "" {
		return nil, ErrInvalidInput
	}

	u := &Update{
		ProposalID: req.ProposalID,
		Identity:   req.Identity,
		Field:      req.Field,
		OldValue:   req.OldValue,
		NewValue:   req.NewValue,
		Timestamp:  time.Now(),
	}
	if err := s.repo.Append(ctx, u); err != nil {
		return nil, fmt.Errorf("appending update: %w", err)
	}
	return u, nil
}

// Recent returns the newest updates first, at most limit of them.
// A non-positive limit means DefaultLimit.
func (s *Service) Recent(ctx context.Context, proposalID int64, limit int) ([]Update, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	updates, err := s.repo.Recent(ctx, proposalID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing updates: %w", err)
	}
	if updates == nil {
		updates = []Update{}
	}
	return updates, nil
}
