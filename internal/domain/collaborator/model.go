package collaborator

import (
	"encoding/json"
	"time"

	"github.com/rpggio/grantmate/internal/domain/identity"
)

// Role is a collaborator's permission level on a proposal
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Collaborator is a roster entry recording who joined a proposal's editing session
type Collaborator struct {
	ID         int64
	ProposalID int64
	Identity   identity.Identity
	Role       Role
	JoinedAt   time.Time
}

type wireCollaborator struct {
	ID         int64     `json:"id"`
	ProposalID int64     `json:"proposalId"`
	UserID     *int64    `json:"userId"`
	GuestName  *string   `json:"guestName"`
	Role       Role      `json:"role"`
	JoinedAt   time.Time `json:"joinedAt"`
}

// MarshalJSON renders the identity as the nullable userId/guestName pair.
func (c Collaborator) MarshalJSON() ([]byte, error) {
	userID, guestName := c.Identity.Columns()
	return json.Marshal(wireCollaborator{
		ID:         c.ID,
		ProposalID: c.ProposalID,
		UserID:     userID,
		GuestName:  guestName,
		Role:       c.Role,
		JoinedAt:   c.JoinedAt,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (c *Collaborator) UnmarshalJSON(data []byte) error {
	var w wireCollaborator
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = Collaborator{
		ID:         w.ID,
		ProposalID: w.ProposalID,
		Identity:   identity.Resolve(w.UserID, w.GuestName),
		Role:       w.Role,
		JoinedAt:   w.JoinedAt,
	}
	return nil
}
