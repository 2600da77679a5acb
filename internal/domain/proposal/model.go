package proposal

import "time"

// Status represents the lifecycle status of a proposal
type Status string

const (
	StatusDraft     Status = "draft"
	StatusGenerated Status = "generated"
	StatusCompleted Status = "completed"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusGenerated, StatusCompleted:
		return true
	}
	return false
}

// Fields holds the editable form content of a proposal
type Fields struct {
	OrganizationName string `json:"organizationName"`
	ProjectTitle     string `json:"projectTitle"`
	Mission          string `json:"mission"`
	Description      string `json:"description"`
	TargetPopulation string `json:"targetPopulation"`
	Amount           string `json:"amount"`
	Timeline         string `json:"timeline"`
	Goals            string `json:"goals"`
}

// Proposal is the shared document being collaboratively edited
type Proposal struct {
	ID     int64  `json:"id"`
	UserID *int64 `json:"userId"`
	Fields
	GeneratedProposal *string   `json:"generatedProposal"`
	Status            Status    `json:"status"`
	ShareToken        string    `json:"shareToken"`
	IsPublic          bool      `json:"isPublic"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Patch describes a partial proposal update. Nil fields are left unchanged.
type Patch struct {
	OrganizationName  *string `json:"organizationName,omitempty"`
	ProjectTitle      *string `json:"projectTitle,omitempty"`
	Mission           *string `json:"mission,omitempty"`
	Description       *string `json:"description,omitempty"`
	TargetPopulation  *string `json:"targetPopulation,omitempty"`
	Amount            *string `json:"amount,omitempty"`
	Timeline          *string `json:"timeline,omitempty"`
	Goals             *string `json:"goals,omitempty"`
	GeneratedProposal *string `json:"generatedProposal,omitempty"`
	Status            *Status `json:"status,omitempty"`
	ShareToken        *string `json:"shareToken,omitempty"`
	IsPublic          *bool   `json:"isPublic,omitempty"`
}

// Apply copies the non-nil patch fields onto p.
func (p *Proposal) Apply(patch Patch) {
	setString(&p.OrganizationName, patch.OrganizationName)
	setString(&p.ProjectTitle, patch.ProjectTitle)
	setString(&p.Mission, patch.Mission)
	setString(&p.Description, patch.Description)
	setString(&p.TargetPopulation, patch.TargetPopulation)
	setString(&p.Amount, patch.Amount)
	setString(&p.Timeline, patch.Timeline)
	setString(&p.Goals, patch.Goals)
	setString(&p.ShareToken, patch.ShareToken)
	if patch.GeneratedProposal != nil {
		text := *patch.GeneratedProposal
		p.GeneratedProposal = &text
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.IsPublic != nil {
		p.IsPublic = *patch.IsPublic
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
