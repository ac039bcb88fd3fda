package core

import (
	"errors"
	"fmt"
)

// Invariant violations. Any of these means a caller or the tick pipeline has
// a bug; the current operation is aborted and the error is surfaced as is.
var (
	ErrCellClaimed   = errors.New("cell already claimed")
	ErrCellVacant    = errors.New("cell not claimed")
	ErrDeadState     = errors.New("transition out of dead state")
	ErrBadDuration   = errors.New("non-positive duration or speed")
	ErrBadState      = errors.New("state not valid for occupant")
	ErrStaleOccupant = errors.New("occupant not recognized by pit")
	ErrOutOfPit      = errors.New("location outside pit columns")
	ErrBadShape      = errors.New("invalid garbage shape")
)

// InvariantError wraps one of the invariant sentinels with the operation
// that tripped it.
type InvariantError struct {
	Op  string
	Err error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("brix: %s: %v", e.Op, e.Err)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

func invariant(op string, err error) error {
	return &InvariantError{Op: op, Err: err}
}

// IsInvariant reports whether err is a fatal consistency violation.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// RulesError reports an unusable rules value.
type RulesError struct {
	Field string
	Value int
}

func (e *RulesError) Error() string {
	return fmt.Sprintf("brix: rule %s must be positive, got %d", e.Field, e.Value)
}
