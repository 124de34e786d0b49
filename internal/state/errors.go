package state

import (
	"errors"
	"fmt"
)

// ErrIncompatibleVersion is returned when a saved state was written by an
// incompatible major version of the format.
var ErrIncompatibleVersion = errors.New("incompatible state version")

// DecodeError indicates saved state that could not be turned into a
// PersistedState.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode state: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
