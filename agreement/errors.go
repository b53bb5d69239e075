package agreement

import "errors"

var (
	// ErrAmountTooSmall is returned by executors when the amount cannot be
	// represented on the target chain. Retrying never helps.
	ErrAmountTooSmall = errors.New("amount is too small to settle on target chain")

	// ErrTxReverted is returned when a settlement tx was mined but failed.
	ErrTxReverted = errors.New("tx reverted")
)
