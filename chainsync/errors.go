package chainsync

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig   = errors.New("invalid monitor config")
	ErrMonitorStarted  = errors.New("monitor already started")
	ErrEventOutOfRange = errors.New("event outside of requested range")
	ErrEventUnordered  = errors.New("events are not in ascending order")
)

// Phase names the step of an iteration that failed.
type Phase string

const (
	PhaseTip      Phase = "tip"
	PhaseFetch    Phase = "fetch"
	PhaseDispatch Phase = "dispatch"
	PhaseSave     Phase = "save"
)

// SyncError is returned by Step when an iteration fails.
// The cursor is untouched whenever a SyncError is returned.
type SyncError struct {
	Phase Phase
	From  uint64
	To    uint64
	Err   error
}

func (e *SyncError) Error() string {
	if e.Phase == PhaseTip {
		return fmt.Sprintf("%s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s [%d, %d]: %v", e.Phase, e.From, e.To, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}
