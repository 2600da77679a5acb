package history

import "errors"

// ErrInvalidInput indicates a missing proposal id or field name.
var ErrInvalidInput = errors.New("invalid update input")
