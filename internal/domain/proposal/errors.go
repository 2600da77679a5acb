package proposal

import (
	"errors"
	"strings"
)

var (
	// ErrProposalNotFound indicates the proposal doesn't exist.
	ErrProposalNotFound = errors.New("proposal not found")
	// ErrInvalidInput indicates invalid proposal input.
	ErrInvalidInput = errors.New("invalid proposal input")
)

// FieldError describes a single failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field-level failure of a submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation error: " + strings.Join(msgs, "; ")
}

// Unwrap lets callers match validation failures with errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
