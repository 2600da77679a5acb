package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/grantmate/internal/domain/collaborator"
	"github.com/rpggio/grantmate/internal/domain/identity"
	"github.com/rpggio/grantmate/internal/repository"
)

// CollaboratorRepository implements collaborator.Repository for SQLite
type CollaboratorRepository struct {
	db *DB
}

// NewCollaboratorRepository creates a new CollaboratorRepository
func NewCollaboratorRepository(db *DB) *CollaboratorRepository {
	return &CollaboratorRepository{db: db}
}

// Upsert adds c to the roster unless its identity is already there. Either
// way c is overwritten with the stored row.
func (r *CollaboratorRepository) Upsert(ctx context.Context, c *collaborator.Collaborator) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	userID, guestName := c.Identity.Columns()
	key := c.Identity.Key()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO proposal_collaborators (proposal_id, identity_key, user_id, guest_name, role, joined_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (proposal_id, identity_key) DO NOTHING
	`, c.ProposalID, key, userID, guestName, string(c.Role), c.JoinedAt.UTC())
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to insert collaborator: %w", err)
	}

	stored, err := scanCollaborator(tx.QueryRowContext(ctx, `
		SELECT id, proposal_id, user_id, guest_name, role, joined_at
		FROM proposal_collaborators
		WHERE proposal_id = ? AND identity_key = ?
	`, c.ProposalID, key))
	if err != nil {
		return fmt.Errorf("failed to read collaborator: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	*c = *stored
	return nil
}

// List returns a proposal's roster in join order
func (r *CollaboratorRepository) List(ctx context.Context, proposalID int64) ([]collaborator.Collaborator, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, proposal_id, user_id, guest_name, role, joined_at
		FROM proposal_collaborators
		WHERE proposal_id = ?
		ORDER BY id ASC
	`, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}
	defer rows.Close()

	collaborators := []collaborator.Collaborator{}
	for rows.Next() {
		c, err := scanCollaborator(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collaborator: %w", err)
		}
		collaborators = append(collaborators, *c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collaborator rows: %w", err)
	}

	return collaborators, nil
}

// Delete removes an identity from a roster and reports whether a row existed
func (r *CollaboratorRepository) Delete(ctx context.Context, proposalID int64, ident identity.Identity) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM proposal_collaborators WHERE proposal_id = ? AND identity_key = ?`,
		proposalID, ident.Key())
	if err != nil {
		return false, fmt.Errorf("failed to delete collaborator: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func scanCollaborator(row rowScanner) (*collaborator.Collaborator, error) {
	var (
		c         collaborator.Collaborator
		userID    sql.NullInt64
		guestName sql.NullString
		role      string
	)

	if err := row.Scan(&c.ID, &c.ProposalID, &userID, &guestName, &role, &c.JoinedAt); err != nil {
		return nil, err
	}

	c.Identity = identityFromColumns(userID, guestName)
	c.Role = collaborator.Role(role)
	return &c, nil
}

func identityFromColumns(userID sql.NullInt64, guestName sql.NullString) identity.Identity {
	var (
		id   *int64
		name *string
	)
	if userID.Valid {
		id = &userID.Int64
	}
	if guestName.Valid {
		name = &guestName.String
	}
	return identity.Resolve(id, name)
}
