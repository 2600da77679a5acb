package collaborator

import (
	"context"

	"github.com/rpggio/grantmate/internal/domain/identity"
)

// Repository provides persistence for roster entries.
type Repository interface {
	// Upsert inserts c unless the identity is already on the proposal's
	// roster, in which case c is overwritten with the stored entry.
	Upsert(ctx context.Context, c *Collaborator) error
	List(ctx context.Context, proposalID int64) ([]Collaborator, error)
	Delete(ctx context.Context, proposalID int64, ident identity.Identity) (bool, error)
}

// ProposalLookup reports whether a proposal exists.
type ProposalLookup interface {
	Exists(ctx context.Context, proposalID int64) (bool, error)
}
