package proposal

import "context"

// Repository provides persistence for proposals.
type Repository interface {
	Create(ctx context.Context, p *Proposal) error
	Get(ctx context.Context, id int64) (*Proposal, error)
	GetByShareToken(ctx context.Context, token string) (*Proposal, error)
	ListByUser(ctx context.Context, userID int64) ([]Proposal, error)
	Update(ctx context.Context, p *Proposal) error
	Delete(ctx context.Context, id int64) error
}

// Generator produces proposal text from form content.
type Generator interface {
	Generate(ctx context.Context, fields Fields) (string, error)
}
