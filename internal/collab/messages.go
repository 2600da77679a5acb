package collab

import (
	"github.com/rpggio/grantmate/internal/domain/collaborator"
)

// Message types exchanged over /ws.
const (
	TypeJoinProposal        = "join_proposal"
	TypeFieldUpdate         = "field_update"
	TypeCollaboratorsUpdate = "collaborators_update"
	TypeFieldChanged        = "field_changed"
	TypeCollaboratorJoined  = "collaborator_joined"
)

type envelope struct {
	Type string `json:"type"`
}

// JoinProposal binds a connection to a proposal.
type JoinProposal struct {
	Type       string  `json:"type"`
	ProposalID int64   `json:"proposalId"`
	UserID     *int64  `json:"userId,omitempty"`
	GuestName  *string `json:"guestName,omitempty"`
}

// FieldUpdate reports a local edit of one form field.
type FieldUpdate struct {
	Type     string `json:"type"`
	Field    string `json:"field"`
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

// CollaboratorsUpdate carries the full roster, sent once after a join.
type CollaboratorsUpdate struct {
	Type          string                      `json:"type"`
	Collaborators []collaborator.Collaborator `json:"collaborators"`
}

// FieldChanged tells peers that another participant edited a field.
type FieldChanged struct {
	Type      string `json:"type"`
	Field     string `json:"field"`
	Value     string `json:"value"`
	UpdatedBy string `json:"updatedBy"`
}

// CollaboratorJoined announces a roster addition made outside the socket.
type CollaboratorJoined struct {
	Type         string                    `json:"type"`
	Collaborator collaborator.Collaborator `json:"collaborator"`
}
