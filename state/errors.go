package state

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyIdentity        = errors.New("monitor identity is empty")
	ErrSettlementExists     = errors.New("settlement already recorded")
	ErrSettlementInvalid    = errors.New("settlement is invalid")
	ErrSettlementNotPending = errors.New("no pending settlement")
	ErrCursorOutOfRange     = errors.New("cursor exceeds storable range")
)

func ErrCursorRegression(identity string, stored, next uint64) error {
	return &CursorRegressionError{Identity: identity, Stored: stored, Next: next}
}

// CursorRegressionError is returned when a save would move a cursor backwards.
type CursorRegressionError struct {
	Identity string
	Stored   uint64
	Next     uint64
}

func (e *CursorRegressionError) Error() string {
	return fmt.Sprintf("cursor regression for %s: stored=%d, next=%d", e.Identity, e.Stored, e.Next)
}
