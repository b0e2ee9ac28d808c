package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session key cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrOutOfOrder is returned when a pending request field is written before the fields that precede it.
var ErrOutOfOrder = errors.New("pending request field written out of order")

// InvalidStageError reports an attempt to assign a stage outside the enumeration.
// It signals a bug in node logic, never a user input problem.
type InvalidStageError struct {
	Value string
}

func (e *InvalidStageError) Error() string {
	return fmt.Sprintf("invalid stage %q", e.Value)
}
