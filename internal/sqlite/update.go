package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/grantmate/internal/domain/history"
)

// UpdateRepository implements history.Repository for SQLite
type UpdateRepository struct {
	db *DB
}

// NewUpdateRepository creates a new UpdateRepository
func NewUpdateRepository(db *DB) *UpdateRepository {
	return &UpdateRepository{db: db}
}

// Append records a field change and sets its ID
func (r *UpdateRepository) Append(ctx context.Context, u *history.Update) error {
	userID, guestName := u.Identity.Columns()

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO proposal_updates (proposal_id, user_id, guest_name, field, old_value, new_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.ProposalID, userID, guestName, u.Field, u.OldValue, u.NewValue, u.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to append update: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read update id: %w", err)
	}
	u.ID = id

	return nil
}

// Recent returns up to limit updates for a proposal, newest first
func (r *UpdateRepository) Recent(ctx context.Context, proposalID int64, limit int) ([]history.Update, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, proposal_id, user_id, guest_name, field, old_value, new_value, created_at
		FROM proposal_updates
		WHERE proposal_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, proposalID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list updates: %w", err)
	}
	defer rows.Close()

	updates := []history.Update{}
	for rows.Next() {
		var (
			u         history.Update
			userID    sql.NullInt64
			guestName sql.NullString
			oldValue  sql.NullString
			newValue  sql.NullString
		)
		err := rows.Scan(&u.ID, &u.ProposalID, &userID, &guestName, &u.Field, &oldValue, &newValue, &u.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan update: %w", err)
		}
		u.Identity = identityFromColumns(userID, guestName)
		u.OldValue = oldValue.String
		u.NewValue = newValue.String
		updates = append(updates, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating update rows: %w", err)
	}

	return updates, nil
}
