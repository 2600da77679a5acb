package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/grantmate/internal/domain/proposal"
	"github.com/rpggio/grantmate/internal/repository"
	"github.com/stretchr/testify/require"
)

func newTestProposal(token string) *proposal.Proposal {
	now := time.Now()
	return &proposal.Proposal{
		Fields: proposal.Fields{
			OrganizationName: "Hope Org",
			ProjectTitle:     "Reading Buddies",
			Mission:          "Help kids read every day",
			Description:      "After-school literacy program",
			TargetPopulation: "Elementary school students",
			Amount:           "50000",
			Timeline:         "12 months",
			Goals:            "Improve reading scores",
		},
		Status:     proposal.StatusDraft,
		ShareToken: token,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func createTestProposal(t *testing.T, db *DB, token string) *proposal.Proposal {
	t.Helper()
	p := newTestProposal(token)
	require.NoError(t, NewProposalRepository(db).Create(context.Background(), p))
	return p
}

func TestProposalRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProposalRepository(db)
	ctx := context.Background()

	userID := int64(7)
	p := newTestProposal("tok1")
	p.UserID = &userID

	require.NoError(t, repo.Create(ctx, p))
	require.NotZero(t, p.ID)

	retrieved, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.Fields, retrieved.Fields)
	require.Equal(t, proposal.StatusDraft, retrieved.Status)
	require.Equal(t, "tok1", retrieved.ShareToken)
	require.NotNil(t, retrieved.UserID)
	require.Equal(t, int64(7), *retrieved.UserID)
	require.Nil(t, retrieved.GeneratedProposal)
	require.False(t, retrieved.IsPublic)

	byToken, err := repo.GetByShareToken(ctx, "tok1")
	require.NoError(t, err)
	require.Equal(t, p.ID, byToken.ID)

	_, err = repo.Get(ctx, 999)
	require.Equal(t, repository.ErrNotFound, err)

	_, err = repo.GetByShareToken(ctx, "missing")
	require.Equal(t, repository.ErrNotFound, err)
}

func TestProposalRepository_DuplicateShareToken(t *testing.T) {
	db := NewTestDB(t)
	createTestProposal(t, db, "dup")

	err := NewProposalRepository(db).Create(context.Background(), newTestProposal("dup"))
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestProposalRepository_Update(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProposalRepository(db)
	ctx := context.Background()

	p := createTestProposal(t, db, "tok1")

	text := "# Proposal"
	p.GeneratedProposal = &text
	p.Status = proposal.StatusGenerated
	p.IsPublic = true
	p.Mission = "A brand new mission"
	require.NoError(t, repo.Update(ctx, p))

	retrieved, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, proposal.StatusGenerated, retrieved.Status)
	require.Equal(t, "# Proposal", *retrieved.GeneratedProposal)
	require.True(t, retrieved.IsPublic)
	require.Equal(t, "A brand new mission", retrieved.Mission)

	missing := newTestProposal("other")
	missing.ID = 999
	require.Equal(t, repository.ErrNotFound, repo.Update(ctx, missing))
}

func TestProposalRepository_ListByUser(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProposalRepository(db)
	ctx := context.Background()

	alice, bob := int64(1), int64(2)
	for i, owner := range []*int64{&alice, &bob, &alice, nil} {
		p := newTestProposal(string(rune('a' + i)))
		p.UserID = owner
		require.NoError(t, repo.Create(ctx, p))
	}

	list, err := repo.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, p := range list {
		require.Equal(t, alice, *p.UserID)
	}

	list, err = repo.ListByUser(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestProposalRepository_DeleteCascadesRoster(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProposalRepository(db)
	ctx := context.Background()

	p := createTestProposal(t, db, "tok1")
	_, err := db.ExecContext(ctx,
		`INSERT INTO proposal_collaborators (proposal_id, identity_key, guest_name) VALUES (?, ?, ?)`,
		p.ID, "guest:Alice", "Alice")
	require.NoError(t, err)

	exists, err := repo.Exists(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, repo.Delete(ctx, p.ID))
	require.Equal(t, repository.ErrNotFound, repo.Delete(ctx, p.ID))

	exists, err = repo.Exists(ctx, p.ID)
	require.NoError(t, err)
	require.False(t, exists)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM proposal_collaborators`).Scan(&count))
	require.Zero(t, count)
}
