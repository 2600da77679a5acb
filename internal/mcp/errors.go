package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/grantmate/internal/ai"
	"github.com/rpggio/grantmate/internal/domain/collaborator"
	"github.com/rpggio/grantmate/internal/domain/history"
	"github.com/rpggio/grantmate/internal/domain/proposal"
)

// APIError represents an MCP tool error payload.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to INTERNAL.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var validation *proposal.ValidationError
	switch {
	case errors.As(err, &validation):
		return &APIError{Code: "VALIDATION_ERROR", Message: "validation error", Details: validation.Fields, RecoveryHint: "Fix the listed fields"}
	case errors.Is(err, proposal.ErrProposalNotFound), errors.Is(err, collaborator.ErrProposalNotFound):
		return &APIError{Code: "PROPOSAL_NOT_FOUND", Message: "proposal not found", RecoveryHint: "Check the proposal id or share token"}
	case errors.Is(err, proposal.ErrInvalidInput), errors.Is(err, collaborator.ErrInvalidInput), errors.Is(err, history.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, ai.ErrGenerationFailed):
		return &APIError{Code: "GENERATION_FAILED", Message: ai.ErrGenerationFailed.Error(), RecoveryHint: "Retry later"}
	default:
		return &APIError{Code: "INTERNAL", Message: "internal error"}
	}
}
