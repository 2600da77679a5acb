package collaborator

import "errors"

var (
	// ErrProposalNotFound indicates the roster's proposal doesn't exist.
	ErrProposalNotFound = errors.New("proposal not found")
	// ErrInvalidInput indicates invalid roster input.
	ErrInvalidInput = errors.New("invalid collaborator input")
)
