package ethsync

import (
	"errors"
	"fmt"
)

var ErrInvalidRange = errors.New("invalid block range")

func ErrInvalidRangeOf(from, to uint64) error {
	return fmt.Errorf("%w: from=%d, to=%d", ErrInvalidRange, from, to)
}
