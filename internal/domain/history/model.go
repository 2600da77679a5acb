package history

import (
	"encoding/json"
	"time"

	"github.com/rpggio/grantmate/internal/domain/identity"
)

// DefaultLimit is the number of updates returned when no limit is given.
const DefaultLimit = 50

// Update is an immutable record of one field change
type Update struct {
	ID         int64
	ProposalID int64
	Identity   identity.Identity
	Field      string
	OldValue   string
	NewValue   string
	Timestamp  time.Time
}

type wireUpdate struct {
	ID         int64     `json:"id"`
	ProposalID int64     `json:"proposalId"`
	UserID     *int64    `json:"userId"`
	GuestName  *string   `json:"guestName"`
	Field      string    `json:"field"`
	OldValue   string    `json:"oldValue"`
	NewValue   string    `json:"newValue"`
	Timestamp  time.Time `json:"timestamp"`
}

// MarshalJSON renders the identity as the nullable userId/guestName pair.
func (u Update) MarshalJSON() ([]byte, error) {
	userID, guestName := u.Identity.Columns()
	return json.Marshal(wireUpdate{
		ID:         u.ID,
		ProposalID: u.ProposalID,
		UserID:     userID,
		GuestName:  guestName,
		Field:      u.Field,
		OldValue:   u.OldValue,
		NewValue:   u.NewValue,
		Timestamp:  u.Timestamp,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (u *Update) UnmarshalJSON(data []byte) error {
	var w wireUpdate
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*u = Update{
		ID:         w.ID,
		ProposalID: w.ProposalID,
		Identity:   identity.Resolve(w.UserID, w.GuestName),
		Field:      w.Field,
		OldValue:   w.OldValue,
		NewValue:   w.NewValue,
		Timestamp:  w.Timestamp,
	}
	return nil
}
