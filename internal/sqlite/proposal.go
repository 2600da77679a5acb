package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/grantmate/internal/domain/proposal"
	"github.com/rpggio/grantmate/internal/repository"
)

const proposalColumns = `
	id, user_id, organization_name, project_title, mission, description,
	target_population, amount, timeline, goals, generated_proposal,
	status, share_token, is_public, created_at, updated_at`

// ProposalRepository implements proposal.Repository for SQLite
type ProposalRepository struct {
	db *DB
}

// NewProposalRepository creates a new ProposalRepository
func NewProposalRepository(db *DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// Create inserts a proposal and sets its ID
func (r *ProposalRepository) Create(ctx context.Context, p *proposal.Proposal) error {
	query := `
		INSERT INTO grant_proposals (
			user_id, organization_name, project_title, mission, description,
			target_population, amount, timeline, goals, generated_proposal,
			status, share_token, is_public, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		p.UserID,
		p.OrganizationName,
		p.ProjectTitle,
		p.Mission,
		p.Description,
		p.TargetPopulation,
		p.Amount,
		p.Timeline,
		p.Goals,
		p.GeneratedProposal,
		string(p.Status),
		p.ShareToken,
		p.IsPublic,
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("duplicate share token: %w", repository.ErrInvalidInput)
		}
		return fmt.Errorf("failed to create proposal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read proposal id: %w", err)
	}
	p.ID = id

	return nil
}

// Get retrieves a proposal by ID
func (r *ProposalRepository) Get(ctx context.Context, id int64) (*proposal.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM grant_proposals WHERE id = ?`

	p, err := scanProposal(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	return p, nil
}

// GetByShareToken retrieves a proposal by its share token
func (r *ProposalRepository) GetByShareToken(ctx context.Context, token string) (*proposal.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM grant_proposals WHERE share_token = ?`

	p, err := scanProposal(r.db.QueryRowContext(ctx, query, token))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal by share token: %w", err)
	}

	return p, nil
}

// ListByUser returns a user's proposals, most recently updated first
func (r *ProposalRepository) ListByUser(ctx context.Context, userID int64) ([]proposal.Proposal, error) {
	query := `SELECT ` + proposalColumns + `
		FROM grant_proposals
		WHERE user_id = ?
		ORDER BY updated_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	proposals := []proposal.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		proposals = append(proposals, *p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposal rows: %w", err)
	}

	return proposals, nil
}

// Update overwrites the stored proposal with p
func (r *ProposalRepository) Update(ctx context.Context, p *proposal.Proposal) error {
	query := `
		UPDATE grant_proposals
		SET user_id = ?, organization_name = ?, project_title = ?, mission = ?,
			description = ?, target_population = ?, amount = ?, timeline = ?,
			goals = ?, generated_proposal = ?, status = ?, share_token = ?,
			is_public = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		p.UserID,
		p.OrganizationName,
		p.ProjectTitle,
		p.Mission,
		p.Description,
		p.TargetPopulation,
		p.Amount,
		p.Timeline,
		p.Goals,
		p.GeneratedProposal,
		string(p.Status),
		p.ShareToken,
		p.IsPublic,
		p.UpdatedAt.UTC(),
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("duplicate share token: %w", repository.ErrInvalidInput)
		}
		return fmt.Errorf("failed to update proposal: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a proposal; its roster goes with it
func (r *ProposalRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM grant_proposals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete proposal: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Exists reports whether a proposal with the given ID is stored
func (r *ProposalRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM grant_proposals WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check proposal: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProposal(row rowScanner) (*proposal.Proposal, error) {
	var (
		p         proposal.Proposal
		userID    sql.NullInt64
		generated sql.NullString
		status    string
	)

	err := row.Scan(
		&p.ID,
		&userID,
		&p.OrganizationName,
		&p.ProjectTitle,
		&p.Mission,
		&p.Description,
		&p.TargetPopulation,
		&p.Amount,
		&p.Timeline,
		&p.Goals,
		&generated,
		&status,
		&p.ShareToken,
		&p.IsPublic,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		id := userID.Int64
		p.UserID = &id
	}
	if generated.Valid {
		text := generated.String
		p.GeneratedProposal = &text
	}
	p.Status = proposal.Status(status)

	return &p, nil
}
