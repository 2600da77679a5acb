package history

import "context"

// Repository provides persistence for the update log.
type Repository interface {
	Append(ctx context.Context, u *Update) error
	Recent(ctx context.Context, proposalID int64, limit int) ([]Update, error)
}
